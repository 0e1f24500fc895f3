package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/codegen"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/repository"
)

// createRetries bounds retries when a generated join code loses a race to a
// concurrent insert.
const createRetries = 3

// GroupService creates classes and rooms with generated join codes.
type GroupService struct {
	classRepo ClassStore
	roomRepo  RoomStore
	gen       *codegen.Generator
	log       zerolog.Logger
}

// NewGroupService creates a new GroupService.
func NewGroupService(classRepo ClassStore, roomRepo RoomStore, gen *codegen.Generator, log zerolog.Logger) *GroupService {
	return &GroupService{
		classRepo: classRepo,
		roomRepo:  roomRepo,
		gen:       gen,
		log:       log.With().Str("component", "group_service").Logger(),
	}
}

// CreateClass creates a class owned by ownerID.
func (s *GroupService) CreateClass(ctx context.Context, ownerID int, req model.CreateGroupRequest) (*model.Class, error) {
	class := &model.Class{Name: req.Name, OwnerID: ownerID}
	err := s.createWithCode(ctx, s.classRepo, func(code string) error {
		class.Code = code
		return s.classRepo.Create(ctx, class)
	})
	if err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}
	s.log.Info().Int("class_id", class.ID).Str("code", class.Code).Msg("Class created")
	return class, nil
}

// CreateRoom creates a room owned by ownerID.
func (s *GroupService) CreateRoom(ctx context.Context, ownerID int, req model.CreateGroupRequest) (*model.Room, error) {
	room := &model.Room{Name: req.Name, OwnerID: ownerID}
	err := s.createWithCode(ctx, s.roomRepo, func(code string) error {
		room.Code = code
		return s.roomRepo.Create(ctx, room)
	})
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	s.log.Info().Int("room_id", room.ID).Str("code", room.Code).Msg("Room created")
	return room, nil
}

// GroupExists reports whether the class or room of the given kind exists.
func (s *GroupService) GroupExists(ctx context.Context, kind model.AssignmentKind, id int) (bool, error) {
	switch kind {
	case model.AssignmentKindClass:
		return s.classRepo.Exists(ctx, id)
	case model.AssignmentKindRoom:
		return s.roomRepo.Exists(ctx, id)
	}
	return false, ErrInvalidAssignmentKind
}

func (s *GroupService) createWithCode(ctx context.Context, store GroupStore, insert func(code string) error) error {
	var err error
	for range createRetries {
		var code string
		code, err = s.gen.Generate(ctx, store.CodeExists)
		if err != nil {
			return err
		}
		if err = insert(code); !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		s.log.Warn().Str("code", code).Msg("Join code taken concurrently, retrying")
	}
	return err
}
