package task

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

var Users = []User{
	{ID: "pavlo", Name: "Павло", Emoji: "👨‍💼"},
	{ID: "dan", Name: "Даня", Emoji: "🧑‍💻"},
	{ID: "anastasia", Name: "Анастасія", Emoji: "👩‍💼"},
}

func IsKnownUser(id string) bool {
	for _, u := range Users {
		if u.ID == id {
			return true
		}
	}
	return false
}
