package chat

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
)

// Service handles workspace chat. A conversation is keyed by proposal id
// and only exists once that proposal is accepted.
type Service struct {
	proposals repository.ProposalRepository
	messages  repository.MessageRepository
}

func NewService(proposals repository.ProposalRepository, messages repository.MessageRepository) *Service {
	return &Service{proposals: proposals, messages: messages}
}

// Authorize checks that the user is a party to an accepted proposal's
// workspace and returns the proposal.
func (s *Service) Authorize(ctx context.Context, proposalID, userID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ClientID != userID && proposal.FreelancerID != userID {
		return nil, apperr.Forbidden("you are not a party to this conversation")
	}
	if proposal.Status != models.ProposalStatusAccepted {
		return nil, apperr.Conflict("chat requires an accepted proposal")
	}
	return proposal, nil
}

// Send persists a message in the proposal's conversation and returns it
// for fan-out. The receiver is always the other party.
func (s *Service) Send(ctx context.Context, proposalID, senderID uuid.UUID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Validation("message content is required")
	}

	proposal, err := s.Authorize(ctx, proposalID, senderID)
	if err != nil {
		return nil, err
	}

	receiverID := proposal.ClientID
	if senderID == proposal.ClientID {
		receiverID = proposal.FreelancerID
	}

	msg := &models.Message{
		ProposalID: proposalID,
		JobID:      proposal.JobID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       models.MessageTypeText,
		Content:    content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the conversation in chronological order.
func (s *Service) History(ctx context.Context, proposalID, userID uuid.UUID) ([]models.Message, error) {
	if _, err := s.Authorize(ctx, proposalID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByProposal(ctx, proposalID)
}
