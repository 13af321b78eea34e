package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/stojkeex/testaii/internal/config"
	"github.com/stojkeex/testaii/internal/domain"
	"github.com/stojkeex/testaii/internal/repository"
)

const (
	welcomePromptFmt = "Greet %s casually, like you know them. Keep it short and friendly."
	ambientPrompt    = "Start a casual conversation in the group chat about something interesting from your life."
)

// OpenerService generates unprompted companion messages: the first greeting
// of a fresh individual profile and ambient chatter inside group profiles.
// Replies are appended to the stored transcript.
type OpenerService struct {
	chat     *ChatService
	profiles *repository.ProfileRepo
	messages *repository.MessageRepo
	rng      *rand.Rand
}

func NewOpenerService(chat *ChatService, profiles *repository.ProfileRepo, messages *repository.MessageRepo, rng *rand.Rand) *OpenerService {
	return &OpenerService{chat: chat, profiles: profiles, messages: messages, rng: rng}
}

// Welcome greets the user from a newly created individual profile.
func (s *OpenerService) Welcome(ctx context.Context, profileID uuid.UUID, user domain.UserProfile) (*domain.StoredMessage, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.Kind != domain.ProfileIndividual {
		return nil, domain.ErrNotIndividual
	}
	if !profile.IsNew {
		return nil, domain.ErrAlreadyGreeted
	}

	result, err := s.chat.Generate(ctx, &domain.GenerationRequest{
		Prompt:  fmt.Sprintf(welcomePromptFmt, user.Name),
		Persona: profile.Persona(),
		User:    user,
		Mode:    domain.ModeIndividual,
	})
	if err != nil {
		return nil, err
	}

	msg := &domain.StoredMessage{
		ProfileID:  profile.ID,
		Role:       domain.RoleModel,
		Text:       result.Text,
		SenderName: profile.Name,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.profiles.ClearNewFlag(ctx, profile.ID); err != nil {
		return nil, err
	}
	return msg, nil
}

// Ambient makes a random group member open a conversation on their own.
// Stops once the chat is long enough to sustain itself.
func (s *OpenerService) Ambient(ctx context.Context, profileID uuid.UUID, user domain.UserProfile) (*domain.StoredMessage, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile.Kind != domain.ProfileGroup {
		return nil, domain.ErrNotGroupProfile
	}
	if len(profile.Members) < 2 {
		return nil, domain.ErrGroupTooSmall
	}

	count, err := s.messages.Count(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if count > config.AmbientMessageCap {
		return nil, domain.ErrChatFull
	}

	speaker := profile.Members[s.rng.Intn(len(profile.Members))]

	stored, err := s.messages.List(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	history := make([]domain.Turn, 0, len(stored))
	for i := range stored {
		history = append(history, stored[i].Turn())
	}

	result, err := s.chat.Generate(ctx, &domain.GenerationRequest{
		Prompt:  ambientPrompt,
		Persona: speaker,
		User:    user,
		History: history,
		Mode:    domain.ModeGroup,
	})
	if err != nil {
		return nil, err
	}

	msg := &domain.StoredMessage{
		ProfileID:  profile.ID,
		Role:       domain.RoleModel,
		Text:       result.Text,
		SenderName: speaker.Name,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
