package task

type Project struct {
	ID       string  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Emoji    string  `json:"emoji" db:"emoji"`
	Gradient string  `json:"gradient" db:"gradient"`
	OwnerID  *string `json:"ownerId,omitempty" db:"owner_id"`
}

type NewProject struct {
	Name     string
	Emoji    string
	Gradient string
}

// Group - список задач на доске, для локального хранилища строится из проекта
type Group struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Color     string `json:"color"`
	Emoji     string `json:"emoji"`
	TaskCount int    `json:"taskCount"`
}

var DefaultProjects = []NewProject{
	{Name: "Logity", Emoji: "🚚", Gradient: "from-orange-400 to-red-500"},
	{Name: "Truxx.AI", Emoji: "🤖", Gradient: "from-blue-400 to-purple-500"},
	{Name: "LBOARD", Emoji: "📊", Gradient: "from-green-400 to-teal-500"},
	{Name: "Personal", Emoji: "🏠", Gradient: "from-pink-400 to-rose-500"},
	{Name: "Other", Emoji: "📌", Gradient: "from-gray-400 to-slate-500"},
}
