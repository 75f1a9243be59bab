package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	repo "taskBoard/internal/repository"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultAPIURL = "https://api.monday.com/v2"

const defaultTimeout = 10 * time.Second

type Config struct {
	APIURL        string
	Token         string
	BoardID       string
	Timeout       time.Duration
	AllowedGroups []string
	GroupEmoji    map[string]string
	DefaultEmoji  string
}

type Client struct {
	cfg  Config
	http *http.Client
}

// APIError - ошибка, которую вернула доска. Сообщение отдаётся клиенту как есть.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, http: httpClient}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data         json.RawMessage `json:"data"`
	Errors       []graphQLError  `json:"errors"`
	ErrorMessage string          `json:"error_message"`
}

func (c *Client) do(ctx context.Context, operation, query string, variables map[string]any, out any) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
			logger.Error("Board: Ошибка запроса к доске", err,
				zap.String("operation", operation),
				zap.Duration("ms", time.Since(start)))
		}
		requestsTotal.WithLabelValues(operation, result).Inc()
		requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("кодирование запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("чтение ответа: %w", err)
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: fmt.Sprintf("board API: HTTP %d", resp.StatusCode)}
		}
		return fmt.Errorf("разбор ответа: %w", err)
	}

	if len(decoded.Errors) > 0 {
		msg := decoded.Errors[0].Message
		if msg == "" {
			msg = "board API error"
		}
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: msg}
	}
	if decoded.ErrorMessage != "" {
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: decoded.ErrorMessage}
	}
	if resp.StatusCode >= 300 {
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: fmt.Sprintf("board API: HTTP %d", resp.StatusCode)}
	}

	if out == nil || len(decoded.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return fmt.Errorf("разбор data: %w", err)
	}
	return nil
}

func (c *Client) allowed(groupID string) bool {
	for _, id := range c.cfg.AllowedGroups {
		if id == groupID {
			return true
		}
	}
	return false
}

func (c *Client) emoji(groupID string) string {
	if e, ok := c.cfg.GroupEmoji[groupID]; ok {
		return e
	}
	return c.cfg.DefaultEmoji
}

func (c *Client) fetchGroups(ctx context.Context) ([]Group, error) {
	query := `query ($boardId: [ID!]) {
		boards(ids: $boardId) {
			groups {
				id
				title
				color
			}
		}
	}`

	var data struct {
		Boards []struct {
			Groups []Group `json:"groups"`
		} `json:"boards"`
	}
	if err := c.do(ctx, "get_groups", query, map[string]any{"boardId": c.cfg.BoardID}, &data); err != nil {
		return nil, err
	}
	if len(data.Boards) == 0 {
		return []Group{}, nil
	}
	return data.Boards[0].Groups, nil
}

// ListGroups возвращает только группы из разрешённого списка с эмодзи и числом задач
func (c *Client) ListGroups(ctx context.Context) ([]task.Group, error) {
	all, err := c.fetchGroups(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]task.Group, 0, len(c.cfg.AllowedGroups))
	for _, g := range all {
		if !c.allowed(g.ID) {
			continue
		}
		groups = append(groups, task.Group{
			ID:    g.ID,
			Title: g.Title,
			Color: g.Color,
			Emoji: c.emoji(g.ID),
		})
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i := range groups {
		i := i
		eg.Go(func() error {
			items, err := c.ListTasksInGroup(egCtx, groups[i].ID)
			if err != nil {
				return err
			}
			groups[i].TaskCount = len(items)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Board: Группы получены", zap.Int("count", len(groups)))
	return groups, nil
}

func (c *Client) ListTasksInGroup(ctx context.Context, groupID string) ([]*task.Task, error) {
	query := `query ($boardId: [ID!], $groupId: [String]) {
		boards(ids: $boardId) {
			groups(ids: $groupId) {
				items_page {
					items {` + itemFields + `
					}
				}
			}
		}
	}`

	var data struct {
		Boards []struct {
			Groups []struct {
				ItemsPage struct {
					Items []Item `json:"items"`
				} `json:"items_page"`
			} `json:"groups"`
		} `json:"boards"`
	}
	vars := map[string]any{"boardId": c.cfg.BoardID, "groupId": []string{groupID}}
	if err := c.do(ctx, "get_tasks_in_group", query, vars, &data); err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0)
	if len(data.Boards) == 0 || len(data.Boards[0].Groups) == 0 {
		return tasks, nil
	}
	for _, it := range data.Boards[0].Groups[0].ItemsPage.Items {
		tasks = append(tasks, it.ToTask())
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	query := `query ($itemIds: [ID!]) {
		items(ids: $itemIds) {` + itemFields + `
		}
	}`

	var data struct {
		Items []Item `json:"items"`
	}
	if err := c.do(ctx, "get_task", query, map[string]any{"itemIds": []string{id}}, &data); err != nil {
		return nil, err
	}
	if len(data.Items) == 0 {
		return nil, repo.ErrNotFound
	}
	return data.Items[0].ToTask(), nil
}

// CreateTask создаёт элемент в группе, колонки заполняются только для переданных полей
func (c *Client) CreateTask(ctx context.Context, name, groupID string, fields task.Patch) (*task.Task, error) {
	query := `mutation ($boardId: ID!, $groupId: String!, $itemName: String!, $columnValues: JSON) {
		create_item(board_id: $boardId, group_id: $groupId, item_name: $itemName, column_values: $columnValues) {` + itemFields + `
		}
	}`

	fields.Title = nil
	vars := map[string]any{
		"boardId":  c.cfg.BoardID,
		"groupId":  groupID,
		"itemName": name,
	}
	if values := Encode(fields); len(values) > 0 {
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("кодирование колонок: %w", err)
		}
		vars["columnValues"] = string(encoded)
	}

	var data struct {
		CreateItem *Item `json:"create_item"`
	}
	if err := c.do(ctx, "create_task", query, vars, &data); err != nil {
		return nil, err
	}
	if data.CreateItem == nil {
		return nil, &APIError{Operation: "create_task", Message: "board API: элемент не создан"}
	}
	return data.CreateItem.ToTask(), nil
}

// UpdateTask меняет колонки. Если патч не задевает ни одной колонки, запрос на изменение не отправляется.
func (c *Client) UpdateTask(ctx context.Context, id string, fields task.Patch) (*task.Task, error) {
	values := Encode(fields)
	if len(values) == 0 {
		return c.GetTask(ctx, id)
	}

	encoded, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("кодирование колонок: %w", err)
	}

	query := `mutation ($boardId: ID!, $itemId: ID!, $columnValues: JSON!) {
		change_multiple_column_values(board_id: $boardId, item_id: $itemId, column_values: $columnValues) {` + itemFields + `
		}
	}`

	var data struct {
		Item *Item `json:"change_multiple_column_values"`
	}
	vars := map[string]any{"boardId": c.cfg.BoardID, "itemId": id, "columnValues": string(encoded)}
	if err := c.do(ctx, "update_task", query, vars, &data); err != nil {
		return nil, err
	}
	if data.Item == nil {
		return nil, repo.ErrNotFound
	}
	return data.Item.ToTask(), nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) (bool, error) {
	query := `mutation ($itemId: ID!) {
		delete_item(item_id: $itemId) {
			id
		}
	}`

	var data struct {
		DeleteItem *struct {
			ID string `json:"id"`
		} `json:"delete_item"`
	}
	if err := c.do(ctx, "delete_task", query, map[string]any{"itemId": id}, &data); err != nil {
		return false, err
	}
	return data.DeleteItem != nil, nil
}

func (c *Client) MoveTaskToGroup(ctx context.Context, id, groupID string) error {
	query := `mutation ($itemId: ID!, $groupId: String!) {
		move_item_to_group(item_id: $itemId, group_id: $groupId) {
			id
		}
	}`

	var data struct {
		Moved *struct {
			ID string `json:"id"`
		} `json:"move_item_to_group"`
	}
	if err := c.do(ctx, "move_task", query, map[string]any{"itemId": id, "groupId": groupID}, &data); err != nil {
		return err
	}
	if data.Moved == nil {
		return repo.ErrNotFound
	}
	logger.Info("Board: Задача перенесена", zap.String("task_id", id), zap.String("group_id", groupID))
	return nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	query := `query ($boardId: [ID!]) {
		boards(ids: $boardId) {
			id
		}
	}`
	var data struct {
		Boards []struct {
			ID string `json:"id"`
		} `json:"boards"`
	}
	if err := c.do(ctx, "health", query, map[string]any{"boardId": c.cfg.BoardID}, &data); err != nil {
		return err
	}
	if len(data.Boards) == 0 {
		return fmt.Errorf("доска %s недоступна", c.cfg.BoardID)
	}
	return nil
}
