// ABOUTME: Dashboard aggregation over the fetched conversation and document lists
// ABOUTME: Derives counts, distinct users, recent items, 7-date trends and response time

package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
)

const (
	// RecentLimit is how many recent items each collection shows
	RecentLimit = 5

	// TrendDays is how many calendar dates a trend keeps
	TrendDays = 7

	trendDateLayout = "2006-01-02"
)

// TrendPoint counts the items of one calendar date.
type TrendPoint struct {
	Date  string
	Count int
}

// Stats is everything the dashboard renders.
type Stats struct {
	TotalConversations  int
	TotalDocuments      int
	ActiveUsers         int
	AvgResponseSeconds  float64
	RecentConversations []backend.Conversation
	RecentDocuments     []backend.Document
	ConversationTrend   []TrendPoint
	DocumentTrend       []TrendPoint
}

// Source is the part of the backend the dashboard reads.
type Source interface {
	ListConversations(ctx context.Context, filter backend.ConversationFilter) ([]backend.Conversation, error)
	ListDocuments(ctx context.Context) ([]backend.Document, error)
}

// Load fetches both collections concurrently and computes the stats.
// On error the returned Stats is zeroed.
func Load(ctx context.Context, src Source) (Stats, error) {
	var convos []backend.Conversation
	var docs []backend.Document

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		convos, err = src.ListConversations(gctx, backend.ConversationFilter{})
		if err != nil {
			return fmt.Errorf("fetching conversations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		docs, err = src.ListDocuments(gctx)
		if err != nil {
			return fmt.Errorf("fetching documents: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	return Compute(convos, docs), nil
}

// Compute derives the dashboard stats from already fetched lists.
// The inputs are not modified.
func Compute(convos []backend.Conversation, docs []backend.Document) Stats {
	convoTimes := make([]time.Time, len(convos))
	users := make(map[string]struct{})
	for i, c := range convos {
		convoTimes[i] = c.Timestamp.Time
		if c.UserName != "" {
			users[c.UserName] = struct{}{}
		}
	}

	docTimes := make([]time.Time, len(docs))
	for i, d := range docs {
		docTimes[i] = d.UploadedAt.Time
	}

	return Stats{
		TotalConversations:  len(convos),
		TotalDocuments:      len(docs),
		ActiveUsers:         len(users),
		AvgResponseSeconds:  averageResponseSeconds(convos),
		RecentConversations: recent(convos, convoTimes),
		RecentDocuments:     recent(docs, docTimes),
		ConversationTrend:   trend(convoTimes),
		DocumentTrend:       trend(docTimes),
	}
}

// recent returns the RecentLimit newest items, newest first.
func recent[T any](items []T, times []time.Time) []T {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return times[idx[a]].Before(times[idx[b]])
	})

	if len(idx) > RecentLimit {
		idx = idx[len(idx)-RecentLimit:]
	}

	out := make([]T, 0, len(idx))
	for i := len(idx) - 1; i >= 0; i-- {
		out = append(out, items[idx[i]])
	}
	return out
}

// trend counts items per calendar date and keeps the last TrendDays dates, ascending.
// Items without a timestamp are skipped.
func trend(times []time.Time) []TrendPoint {
	counts := make(map[string]int)
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		counts[t.Format(trendDateLayout)]++
	}

	dates := make([]string, 0, len(counts))
	for d := range counts {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	if len(dates) > TrendDays {
		dates = dates[len(dates)-TrendDays:]
	}

	points := make([]TrendPoint, len(dates))
	for i, d := range dates {
		points[i] = TrendPoint{Date: d, Count: counts[d]}
	}
	return points
}

// averageResponseSeconds measures, per chat session, the delay between a user
// message and the assistant message that directly follows it.
func averageResponseSeconds(convos []backend.Conversation) float64 {
	bySession := make(map[string][]backend.Conversation)
	for _, c := range convos {
		if c.Timestamp.IsZero() {
			continue
		}
		bySession[c.SessionID] = append(bySession[c.SessionID], c)
	}

	var total time.Duration
	var n int
	for _, msgs := range bySession {
		sort.SliceStable(msgs, func(i, j int) bool {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp.Time)
		})
		for i := 1; i < len(msgs); i++ {
			if msgs[i].Role != backend.RoleAssistant || msgs[i-1].Role != backend.RoleUser {
				continue
			}
			if d := msgs[i].Timestamp.Sub(msgs[i-1].Timestamp.Time); d > 0 {
				total += d
				n++
			}
		}
	}

	if n == 0 {
		return 0
	}
	return total.Seconds() / float64(n)
}
