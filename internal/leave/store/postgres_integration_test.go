//go:build integration

package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campus/internal/leave/models"
	schoolmodels "campus/internal/school/models"
	schoolstore "campus/internal/school/store"
	"campus/internal/workflow"
	id "campus/pkg/domain"
	"campus/pkg/platform/sentinel"
	"campus/pkg/testutil/containers"
)

// PostgresLeaveStoreSuite runs the leave store contract against a real
// PostgreSQL instance; the conditional-UPDATE transition only shows its
// concurrency behavior here.
type PostgresLeaveStoreSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	store    *PostgresLeaveStore
	schools  *schoolstore.PostgresSchoolStore
	ctx      context.Context
	schoolID id.SchoolID
	otherID  id.SchoolID
}

func TestPostgresLeaveStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed suite in short mode")
	}
	suite.Run(t, new(PostgresLeaveStoreSuite))
}

func (s *PostgresLeaveStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresLeaveStore(s.pg.DB)
	s.schools = schoolstore.NewPostgresSchoolStore(s.pg.DB)
}

func (s *PostgresLeaveStoreSuite) TearDownSuite() {
	if s.pg != nil {
		_ = s.pg.DB.Close()
		_ = s.pg.Container.Terminate(s.ctx)
	}
}

func (s *PostgresLeaveStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
	s.schoolID = s.createSchool("alpha")
	s.otherID = s.createSchool("beta")
}

func (s *PostgresLeaveStoreSuite) createSchool(slug string) id.SchoolID {
	school, err := schoolmodels.NewSchool(id.SchoolID(uuid.New()), "School "+slug, slug, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.schools.Create(s.ctx, school))
	return school.ID
}

func (s *PostgresLeaveStoreSuite) newRequest(schoolID id.SchoolID) *models.LeaveRequest {
	now := time.Now()
	request, err := models.NewLeaveRequest(
		id.LeaveID(uuid.New()), schoolID, id.UserID(uuid.New()),
		"medical appointment", now, now.Add(24*time.Hour), now,
	)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, request))
	return request
}

func (s *PostgresLeaveStoreSuite) TestCreateAndFind() {
	request := s.newRequest(s.schoolID)

	found, err := s.store.FindByID(s.ctx, s.schoolID, request.ID)
	s.Require().NoError(err)
	s.Equal(request.Reason, found.Reason)
	s.Equal(workflow.StatusPending, found.Status)

	_, err = s.store.FindByID(s.ctx, s.otherID, request.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Create(s.ctx, request), sentinel.ErrConflict)
}

func (s *PostgresLeaveStoreSuite) TestListFilters() {
	first := s.newRequest(s.schoolID)
	s.newRequest(s.schoolID)
	s.newRequest(s.otherID)

	_, err := s.store.Transition(s.ctx, s.schoolID, first.ID, workflow.StatusApproved, "", id.UserID(uuid.New()))
	s.Require().NoError(err)

	all, err := s.store.List(s.ctx, s.schoolID, "")
	s.Require().NoError(err)
	s.Len(all, 2)

	pending, err := s.store.List(s.ctx, s.schoolID, workflow.StatusPending)
	s.Require().NoError(err)
	s.Len(pending, 1)
}

func (s *PostgresLeaveStoreSuite) TestConditionalTransition() {
	request := s.newRequest(s.schoolID)
	decider := id.UserID(uuid.New())

	decided, err := s.store.Transition(s.ctx, s.schoolID, request.ID, workflow.StatusConditionallyApproved, "half day only", decider)
	s.Require().NoError(err)
	s.Equal(workflow.StatusConditionallyApproved, decided.Status)
	s.Equal("half day only", decided.Remarks)
	s.Equal(decider, decided.DecidedBy)

	_, err = s.store.Transition(s.ctx, s.schoolID, request.ID, workflow.StatusRejected, "", decider)
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.Transition(s.ctx, s.otherID, request.ID, workflow.StatusApproved, "", decider)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	found, err := s.store.FindByID(s.ctx, s.schoolID, request.ID)
	s.Require().NoError(err)
	s.Equal(workflow.StatusConditionallyApproved, found.Status)
}

func (s *PostgresLeaveStoreSuite) TestConcurrentDecidersRaceToOneWinner() {
	request := s.newRequest(s.schoolID)

	const deciders = 8
	var wg sync.WaitGroup
	results := make(chan error, deciders)
	for i := 0; i < deciders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Transition(s.ctx, s.schoolID, request.ID, workflow.StatusApproved, "", id.UserID(uuid.New()))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			s.Require().ErrorIs(err, sentinel.ErrInvalidState)
		}
	}
	s.Equal(1, wins)
}
