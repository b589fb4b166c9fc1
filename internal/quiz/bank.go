package quiz

import (
	"fmt"

	"carewise/internal/models"
)

// Bank indexes the question table by category. Questions keep their table
// order inside a category so a visited set can address them by index.
type Bank struct {
	categories []models.Category
	byCategory map[string][]models.Question
}

// NewBank builds a bank, rejecting questions whose category is unknown.
func NewBank(categories []models.Category, questions []models.Question) (*Bank, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("quiz bank needs at least one category")
	}

	b := &Bank{
		categories: categories,
		byCategory: make(map[string][]models.Question, len(categories)),
	}
	for _, c := range categories {
		b.byCategory[c.ID] = nil
	}
	for _, q := range questions {
		if _, ok := b.byCategory[q.Category]; !ok {
			return nil, fmt.Errorf("question %s: %w %q", q.ID, ErrUnknownCategory, q.Category)
		}
		b.byCategory[q.Category] = append(b.byCategory[q.Category], q)
	}
	return b, nil
}

// Categories returns the categories in table order.
func (b *Bank) Categories() []models.Category {
	return b.categories
}

// Category looks up a category by id.
func (b *Bank) Category(id string) (models.Category, bool) {
	for _, c := range b.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// Questions returns the questions of a category in table order.
func (b *Bank) Questions(categoryID string) []models.Question {
	return b.byCategory[categoryID]
}

// UnlockedAt returns the ids of every category whose unlock level is at or
// below level, in table order.
func (b *Bank) UnlockedAt(level int) []string {
	var ids []string
	for _, c := range b.categories {
		if c.UnlockLevel <= level {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
