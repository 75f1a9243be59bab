package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

// фиксированная ширина, чтобы ORDER BY по тексту совпадал с порядком времени
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Storage struct {
	db *sql.DB
}

// DSN добавляет к пути файла параметры, с которыми работает хранилище
func DSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		logger.Error("Repository: Ошибка открытия SQLite", err)
		return nil, fmt.Errorf("открытие базы: %w", err)
	}

	// SQLite допускает только одного писателя
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное открытие SQLite", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		logger.Error("Repository: Закрытие SQLite", err)
		return
	}
	logger.Info("Repository: Закрытие SQLite")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func observe(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленная операция",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*task.Project, error) {
	p := &task.Project{}
	var owner sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Emoji, &p.Gradient, &owner); err != nil {
		return nil, err
	}
	if owner.Valid {
		p.OwnerID = &owner.String
	}
	return p, nil
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{Origin: task.OriginLocal}
	var (
		status    string
		deadline  sql.NullString
		createdAt string
		closedAt  sql.NullString
		owner     sql.NullString
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.AssigneeID,
		&t.ProjectID,
		&deadline,
		&status,
		&createdAt,
		&closedAt,
		&owner,
	)
	if err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	if deadline.Valid {
		t.Deadline = &deadline.String
	}
	if owner.Valid {
		t.OwnerID = &owner.String
	}

	t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("разбор created_at: %w", err)
	}
	if closedAt.Valid {
		closed, err := time.Parse(time.RFC3339Nano, closedAt.String)
		if err != nil {
			return nil, fmt.Errorf("разбор closed_at: %w", err)
		}
		t.ClosedAt = &closed
	}
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

func (s *Storage) ListProjects(ctx context.Context, ownerID string) ([]*task.Project, error) {
	start := time.Now()
	defer observe("list_projects", start)

	q := repo.ListProjects(repo.Question, ownerID)
	rows, err := s.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		logger.Error("Repository: Получение проектов", err)
		return nil, fmt.Errorf("получение проектов: %w", err)
	}
	defer rows.Close()

	projects := make([]*task.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение проекта: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация проектов: %w", err)
	}
	return projects, nil
}

func (s *Storage) GetProject(ctx context.Context, id string) (*task.Project, error) {
	query := `SELECT ` + repo.ProjectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Получение проекта", err, zap.String("project_id", id))
		return nil, fmt.Errorf("получение проекта: %w", err)
	}
	return p, nil
}

func (s *Storage) CreateProject(ctx context.Context, in task.NewProject, ownerID string) (*task.Project, error) {
	start := time.Now()
	defer observe("create_project", start)

	p := &task.Project{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Emoji:    in.Emoji,
		Gradient: in.Gradient,
	}
	if ownerID != "" {
		p.OwnerID = &ownerID
	}

	query := `INSERT INTO projects (id, name, emoji, gradient, owner_id) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Name, p.Emoji, p.Gradient, nullable(ownerID)); err != nil {
		logger.Error("Repository: Создание проекта", err)
		return nil, fmt.Errorf("создание проекта: %w", err)
	}
	return p, nil
}

func (s *Storage) DeleteProject(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	defer observe("delete_project", start)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
		logger.Error("Repository: Удаление задач проекта", err, zap.String("project_id", id))
		return false, fmt.Errorf("удаление задач проекта: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Удаление проекта", err, zap.String("project_id", id))
		return false, fmt.Errorf("удаление проекта: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("удаление проекта: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("фиксация транзакции: %w", err)
	}
	return affected > 0, nil
}

func (s *Storage) ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer observe("list_tasks", start)

	q := repo.ListTasks(repo.Question, f)
	rows, err := s.db.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		logger.Error("Repository: Получение задач", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение задачи: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация задач: %w", err)
	}
	return tasks, nil
}

func (s *Storage) GetTask(ctx context.Context, id string) (*task.Task, error) {
	query := `SELECT ` + repo.TaskColumns + ` FROM tasks WHERE id = ?`
	t, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Получение задачи", err, zap.String("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) CreateTask(ctx context.Context, in task.NewTask, ownerID string) (*task.Task, error) {
	start := time.Now()
	defer observe("create_task", start)

	var deadline any
	if in.Deadline != nil {
		deadline = *in.Deadline
	}

	query := `INSERT INTO tasks (id, title, description, assignee_id, project_id, deadline, status, created_at, closed_at, owner_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
			RETURNING ` + repo.TaskColumns

	t, err := scanTask(s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		in.Title,
		in.Description,
		in.AssigneeID,
		in.ProjectID,
		deadline,
		string(task.StatusTodo),
		formatTime(time.Now()),
		nullable(ownerID),
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, repo.ErrProjectNotFound
		}
		logger.Error("Repository: Создание задачи", err)
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	q, ok := repo.UpdateTask(repo.Question, id, patch, formatTime(time.Now()))
	if !ok {
		return s.GetTask(ctx, id)
	}

	start := time.Now()
	defer observe("update_task", start)

	t, err := scanTask(s.db.QueryRowContext(ctx, q.SQL, q.Args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, repo.ErrProjectNotFound
		}
		logger.Error("Repository: Обновление задачи", err, zap.String("task_id", id))
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	defer observe("delete_task", start)

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.String("task_id", id))
		return false, fmt.Errorf("удаление задачи: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("удаление задачи: %w", err)
	}
	return affected > 0, nil
}
