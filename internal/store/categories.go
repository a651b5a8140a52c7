package store

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// RenameCategory moves every expense of this owner from one category to
// another, in storage and in the snapshot. The target must be a registry
// category; the category set itself is fixed. Returns the number of
// expenses moved.
func (s *FinanceStore) RenameCategory(ctx context.Context, oldCat, newCat core.Category) (int64, error) {
	if s.owner == "" {
		return 0, nil
	}
	if !newCat.Valid() {
		return 0, core.ErrUnknownCategory
	}

	n, err := s.repo.RenameCategory(ctx, s.owner, oldCat, newCat)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for i := range s.expenses {
		if s.expenses[i].Category == oldCat {
			s.expenses[i].Category = newCat
		}
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Renamed category",
		log.FieldCategory, string(oldCat), "new_category", string(newCat), "moved", n)
	s.publish(ctx, "expense", "updated", "category:"+string(oldCat))
	return n, nil
}

// DeleteCategory removes every expense of this owner in the category,
// in storage and in the snapshot. Returns the number of expenses removed.
func (s *FinanceStore) DeleteCategory(ctx context.Context, cat core.Category) (int64, error) {
	if s.owner == "" {
		return 0, nil
	}

	n, err := s.repo.DeleteCategoryExpenses(ctx, s.owner, cat)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	kept := s.expenses[:0:0]
	for _, e := range s.expenses {
		if e.Category != cat {
			kept = append(kept, e)
		}
	}
	s.expenses = kept
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Deleted category expenses",
		log.FieldCategory, string(cat), "removed", n)
	s.publish(ctx, "expense", "deleted", "category:"+string(cat))
	return n, nil
}
