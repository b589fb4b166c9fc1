package models

// Difficulty of a quest question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Category groups quest questions and is unlocked at a player level.
type Category struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Icon        string `yaml:"icon" json:"icon"`
	Color       string `yaml:"color" json:"color"`
	UnlockLevel int    `yaml:"unlock_level" json:"unlockLevel"`
}

// Question is an immutable multiple choice question.
type Question struct {
	ID           string     `yaml:"id" json:"id"`
	Prompt       string     `yaml:"prompt" json:"question"`
	Options      []string   `yaml:"options" json:"options"`
	CorrectIndex int        `yaml:"correct_index" json:"correctAnswer"`
	Explanation  string     `yaml:"explanation" json:"explanation"`
	Category     string     `yaml:"category" json:"category"`
	Difficulty   Difficulty `yaml:"difficulty" json:"difficulty"`
	Story        string     `yaml:"story,omitempty" json:"story,omitempty"`
}

// PlayerProgress is the visitor's standing in the health quest.
type PlayerProgress struct {
	Level              int      `json:"level"`
	Experience         int      `json:"experience"`
	QuestionsAnswered  int      `json:"questionsAnswered"`
	CorrectAnswers     int      `json:"correctAnswers"`
	UnlockedCategories []string `json:"unlockedCategories"`
}

// IsUnlocked reports whether the category id is in the unlocked list.
func (p PlayerProgress) IsUnlocked(categoryID string) bool {
	for _, id := range p.UnlockedCategories {
		if id == categoryID {
			return true
		}
	}
	return false
}
