// internal/app/lookup_service.go
package app

import (
	"context"
	"errors"
	"fmt"

	"telegramschoolbot/internal/domain/timetable"
	idb "telegramschoolbot/internal/infra/database" // For ErrPageNotFound

	"github.com/sirupsen/logrus"
)

// prefixQueryLimit is enough to tell one match from many without listing them.
const prefixQueryLimit = 2

// Outcome is the result class of a timetable lookup.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeFound
	OutcomeAmbiguous
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// LookupResult carries the page when Outcome is OutcomeFound.
type LookupResult struct {
	Outcome Outcome
	Page    *timetable.Page
}

type LookupService struct {
	pages  timetable.Repository
	logger *logrus.Entry
}

func NewLookupService(pages timetable.Repository, logger *logrus.Entry) *LookupService {
	return &LookupService{pages: pages, logger: logger}
}

// Classify returns the categories to try for a query, in order.
// A valid hint restricts the search to that category alone.
func (s *LookupService) Classify(hint timetable.Category) []timetable.Category {
	if hint.Valid() {
		return []timetable.Category{hint}
	}
	return timetable.Categories()
}

// Resolve searches the categories in order. The first category with exactly one
// match wins; a category with several matches stops the search as ambiguous.
// Storage errors are returned as is.
func (s *LookupService) Resolve(ctx context.Context, categories []timetable.Category, key string) (LookupResult, error) {
	if key == "" {
		return LookupResult{Outcome: OutcomeNotFound}, nil
	}

	for _, category := range categories {
		pages, err := s.find(ctx, category, key)
		if err != nil {
			return LookupResult{}, err
		}

		switch len(pages) {
		case 0:
			continue
		case 1:
			s.logger.WithFields(logrus.Fields{"category": category, "key": key}).Debug("Lookup matched a single page")
			return LookupResult{Outcome: OutcomeFound, Page: pages[0]}, nil
		default:
			s.logger.WithFields(logrus.Fields{"category": category, "key": key}).Debug("Lookup is ambiguous")
			return LookupResult{Outcome: OutcomeAmbiguous}, nil
		}
	}
	return LookupResult{Outcome: OutcomeNotFound}, nil
}

// Lookup normalizes text, classifies it with hint and resolves it.
func (s *LookupService) Lookup(ctx context.Context, hint timetable.Category, text string) (LookupResult, error) {
	return s.Resolve(ctx, s.Classify(hint), timetable.NormalizeKey(text))
}

func (s *LookupService) find(ctx context.Context, category timetable.Category, key string) ([]*timetable.Page, error) {
	switch category.Policy() {
	case timetable.MatchExact:
		page, err := s.pages.Get(ctx, category, key)
		if err != nil {
			if errors.Is(err, idb.ErrPageNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to get %s page: %w", category, err)
		}
		return []*timetable.Page{page}, nil
	case timetable.MatchPrefix:
		pages, err := s.pages.QueryPrefix(ctx, category, key, prefixQueryLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s pages: %w", category, err)
		}
		return pages, nil
	default:
		return nil, fmt.Errorf("no lookup policy for category %s", category)
	}
}
