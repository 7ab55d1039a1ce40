package tasks

import (
	"context"
	"log"
	"time"
)

// StartAutoApprovalWorker approves submitted tasks that the client has
// ignored past the review deadline. It scans hourly; each approval is
// guarded by a row lock so a manual review racing the worker wins.
func (s *Service) StartAutoApprovalWorker(reviewDays int) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Task auto-approval worker started")

		for range ticker.C {
			s.approveExpired(reviewDays)
		}
	}()
}

func (s *Service) approveExpired(reviewDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -reviewDays)
	expired, err := s.tasks.ListSubmittedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("Auto-approval scan failed: %v", err)
		return
	}

	for _, task := range expired {
		if err := s.tasks.AutoComplete(ctx, task.ID); err != nil {
			log.Printf("Auto-approval failed for task %s: %v", task.ID, err)
			continue
		}
		log.Printf("Task %s auto-approved after review deadline", task.ID)
	}
}
