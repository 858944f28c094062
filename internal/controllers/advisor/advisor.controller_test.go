package advisorController

import (
	"context"
	"errors"
	"testing"

	"advisorapi/config"
	"advisorapi/internal/database"
	"advisorapi/internal/events"
	"advisorapi/internal/metrics"
	. "advisorapi/internal/models"
	"advisorapi/internal/repositories"
	"advisorapi/internal/repositories/mocks"
	"advisorapi/internal/services"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// fixedRandom makes every draw return value+1.
type fixedRandom struct {
	value int
}

func (f fixedRandom) IntN(int) int {
	return f.value
}

func johnDoe() Advisor {
	return Advisor{
		BaseModel: BaseModel{ID: 1},
		Name:      "John Doe",
		SIN:       "123456789",
		Address:   "123 Street",
		Phone:     "12345678",
	}
}

type AdvisorControllerSuite struct {
	suite.Suite

	ctx        context.Context
	repo       repositories.AdvisorRepository
	bus        *events.EventBus
	metrics    *metrics.Metrics
	received   []events.Event
	controller *AdvisorController
}

func (s *AdvisorControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = repositories.NewAdvisorMemory()
	s.bus = events.New(nil, config.Config{})
	s.metrics = metrics.New()
	s.received = nil
	s.bus.Subscribe(events.ADVISOR_CHANNEL, func(e events.Event) {
		s.received = append(s.received, e)
	})

	s.controller = New(
		s.repo,
		services.NewHealthStatusService(fixedRandom{value: 0}),
		services.NewTransactionService(database.DB{}),
		services.NewCacheInvalidationService(s.bus),
		s.metrics,
	)
}

func TestAdvisorControllerSuite(t *testing.T) {
	suite.Run(t, new(AdvisorControllerSuite))
}

func (s *AdvisorControllerSuite) requireReason(err error, reason string) {
	var validationErr *ValidationError
	s.Require().ErrorAs(err, &validationErr)
	s.Equal(reason, validationErr.Reason)
	s.Equal(reason, err.Error())
}

func (s *AdvisorControllerSuite) TestCreate_ThenGetOneIsMasked() {
	created, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)
	s.Equal("*****6789", created.SIN)
	s.Equal("****5678", created.Phone)

	view, err := s.controller.GetOne(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(AdvisorView{
		ID:           1,
		Name:         "John Doe",
		SIN:          "*****6789",
		Address:      "123 Street",
		Phone:        "****5678",
		HealthStatus: HealthStatusGreen,
	}, view)

	stored, err := s.repo.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("123456789", stored.SIN, "stored record keeps the raw sin")
	s.Equal("12345678", stored.Phone)
}

func (s *AdvisorControllerSuite) TestCreate_OverwritesCallerHealthStatus() {
	candidate := johnDoe()
	candidate.HealthStatus = HealthStatusRed

	created, err := s.controller.Create(s.ctx, candidate)
	s.Require().NoError(err)
	s.Equal(HealthStatusGreen, created.HealthStatus)
}

func (s *AdvisorControllerSuite) TestCreate_DuplicateID() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	second := johnDoe()
	second.SIN = "111222333"
	_, err = s.controller.Create(s.ctx, second)
	s.requireReason(err, ReasonIDExists)
}

func (s *AdvisorControllerSuite) TestCreate_DuplicateSIN() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	second := johnDoe()
	second.ID = 2
	_, err = s.controller.Create(s.ctx, second)
	s.requireReason(err, ReasonSINUnique)
}

func (s *AdvisorControllerSuite) TestCreate_ValidationScenarios() {
	long := make([]rune, 256)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name      string
		candidate Advisor
		reason    string
	}{
		{
			name:      "empty name",
			candidate: Advisor{BaseModel: BaseModel{ID: 10}, Name: "", SIN: "444555666", Address: "A", Phone: "33445566"},
			reason:    ReasonNameRequired,
		},
		{
			name:      "whitespace name",
			candidate: Advisor{BaseModel: BaseModel{ID: 10}, Name: "  \t", SIN: "444555666", Address: "A", Phone: "33445566"},
			reason:    ReasonNameRequired,
		},
		{
			name:      "short sin",
			candidate: Advisor{BaseModel: BaseModel{ID: 10}, Name: "X", SIN: "123", Address: "A", Phone: "12345678"},
			reason:    ReasonSINLength,
		},
		{
			name:      "short phone",
			candidate: Advisor{BaseModel: BaseModel{ID: 10}, Name: "X", SIN: "999999999", Address: "A", Phone: "12345"},
			reason:    ReasonPhoneLength,
		},
		{
			name:      "name checked before sin",
			candidate: Advisor{BaseModel: BaseModel{ID: 10}, Name: "", SIN: "1", Address: "A", Phone: "1"},
			reason:    ReasonNameRequired,
		},
		{
			name:      "long name",
			candidate: Advisor{BaseModel: BaseModel{ID: 10}, Name: string(long), SIN: "999999999", Address: "A", Phone: "12345678"},
			reason:    ReasonNameTooLong,
		},
		{
			name:      "long address",
			candidate: Advisor{BaseModel: BaseModel{ID: 10}, Name: "X", SIN: "999999999", Address: string(long), Phone: "12345678"},
			reason:    ReasonAddressTooLong,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.controller.Create(s.ctx, tt.candidate)
			s.requireReason(err, tt.reason)

			exists, err := s.repo.ExistsByField(s.ctx, repositories.FieldID, tt.candidate.ID)
			s.Require().NoError(err)
			s.False(exists, "rejected candidates are not stored")
		})
	}

	s.Equal(float64(3), testutil.ToFloat64(s.metrics.ValidationFailures.WithLabelValues(ReasonNameRequired)))
}

func (s *AdvisorControllerSuite) TestCreate_IDCheckedFirst() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	_, err = s.controller.Create(s.ctx, Advisor{BaseModel: BaseModel{ID: 1}})
	s.requireReason(err, ReasonIDExists)
}

func (s *AdvisorControllerSuite) TestCreate_RecordsMetricsAndEvent() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.AdvisorsCreated))
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.HealthStatusAssigned.WithLabelValues("Green")))

	s.Require().Len(s.received, 1)
	s.Equal(events.AdvisorCreated, s.received[0].Type)
	s.Equal(1, s.received[0].AdvisorID)
}

func (s *AdvisorControllerSuite) TestGetOne_Missing() {
	_, err := s.controller.GetOne(s.ctx, 42)
	s.ErrorIs(err, ErrNotFound)
}

func (s *AdvisorControllerSuite) TestGetAll_Empty() {
	views, err := s.controller.GetAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(views)
	s.Empty(views)
}

func (s *AdvisorControllerSuite) TestGetAll_MaskedAndOrdered() {
	jane := Advisor{BaseModel: BaseModel{ID: 2}, Name: "Jane Doe", SIN: "987654321", Address: "456 Avenue", Phone: "87654321"}
	_, err := s.controller.Create(s.ctx, jane)
	s.Require().NoError(err)
	_, err = s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	views, err := s.controller.GetAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal(1, views[0].ID)
	s.Equal("*****6789", views[0].SIN)
	s.Equal(2, views[1].ID)
	s.Equal("****4321", views[1].Phone)
}

func (s *AdvisorControllerSuite) TestUpdate_IDMismatch() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	record := johnDoe()
	record.ID = 2
	s.ErrorIs(s.controller.Update(s.ctx, 1, record), ErrMalformedRequest)

	view, err := s.controller.GetOne(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("John Doe", view.Name, "mismatched update leaves the record alone")
}

func (s *AdvisorControllerSuite) TestUpdate_AppliesWithoutValidation() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	record := Advisor{BaseModel: BaseModel{ID: 1}, Name: "", SIN: "12", Address: "B", Phone: "1"}
	s.Require().NoError(s.controller.Update(s.ctx, 1, record))

	stored, err := s.repo.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("", stored.Name)
	s.Equal("12", stored.SIN)
	s.Equal("1", stored.Phone)
	s.Equal(HealthStatusGreen, stored.HealthStatus)

	s.Require().Len(s.received, 2)
	s.Equal(events.AdvisorUpdated, s.received[1].Type)
}

func (s *AdvisorControllerSuite) TestUpdate_Missing() {
	s.ErrorIs(s.controller.Update(s.ctx, 9, Advisor{BaseModel: BaseModel{ID: 9}}), ErrNotFound)
}

func (s *AdvisorControllerSuite) TestUpdate_ConflictIsReported() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)
	jane := Advisor{BaseModel: BaseModel{ID: 2}, Name: "Jane Doe", SIN: "987654321", Address: "456 Avenue", Phone: "87654321"}
	_, err = s.controller.Create(s.ctx, jane)
	s.Require().NoError(err)

	jane.SIN = "123456789"
	err = s.controller.Update(s.ctx, 2, jane)
	s.ErrorIs(err, ErrConflict)
	s.NotErrorIs(err, ErrNotFound)
}

func (s *AdvisorControllerSuite) TestDelete() {
	_, err := s.controller.Create(s.ctx, johnDoe())
	s.Require().NoError(err)

	s.Require().NoError(s.controller.Delete(s.ctx, 1))
	_, err = s.controller.GetOne(s.ctx, 1)
	s.ErrorIs(err, ErrNotFound)

	s.ErrorIs(s.controller.Delete(s.ctx, 1), ErrNotFound)

	s.Require().Len(s.received, 2)
	s.Equal(events.AdvisorDeleted, s.received[1].Type)
}

func (s *AdvisorControllerSuite) TestHealthStatusFollowsDraw() {
	tests := []struct {
		value    int
		expected HealthStatus
	}{
		{0, HealthStatusGreen},
		{1, HealthStatusGreen},
		{2, HealthStatusGreen},
		{3, HealthStatusYellow},
		{4, HealthStatusRed},
	}

	for i, tt := range tests {
		controller := New(
			repositories.NewAdvisorMemory(),
			services.NewHealthStatusService(fixedRandom{value: tt.value}),
			services.NewTransactionService(database.DB{}),
			nil,
			nil,
		)

		candidate := johnDoe()
		candidate.ID = i + 1
		created, err := controller.Create(s.ctx, candidate)
		s.Require().NoError(err)
		s.Equal(tt.expected, created.HealthStatus)
	}
}

// Store failures are never dressed up as validation or not-found results.

func TestCreate_StoreErrorDuringValidationPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAdvisorRepository(ctrl)

	storeErr := errors.New("connection refused")
	repo.EXPECT().
		ExistsByField(gomock.Any(), repositories.FieldID, 1).
		Return(false, storeErr)

	controller := New(repo, services.NewHealthStatusService(nil), services.NewTransactionService(database.DB{}), nil, nil)

	_, err := controller.Create(context.Background(), johnDoe())
	assert.ErrorIs(t, err, storeErr)

	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr))
}

func TestCreate_InsertConflictIsConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAdvisorRepository(ctrl)

	gomock.InOrder(
		repo.EXPECT().ExistsByField(gomock.Any(), repositories.FieldID, 1).Return(false, nil),
		repo.EXPECT().ExistsByField(gomock.Any(), repositories.FieldSIN, "123456789").Return(false, nil),
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(repositories.ErrConflict),
	)

	controller := New(repo, services.NewHealthStatusService(nil), services.NewTransactionService(database.DB{}), nil, nil)

	_, err := controller.Create(context.Background(), johnDoe())
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreate_InsertsAssignedStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAdvisorRepository(ctrl)

	repo.EXPECT().ExistsByField(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	repo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, advisor *Advisor) error {
			assert.Equal(t, HealthStatusRed, advisor.HealthStatus)
			assert.Equal(t, "123456789", advisor.SIN, "the raw sin is stored")
			return nil
		})

	controller := New(repo, services.NewHealthStatusService(fixedRandom{value: 4}), services.NewTransactionService(database.DB{}), nil, nil)

	view, err := controller.Create(context.Background(), johnDoe())
	require.NoError(t, err)
	assert.Equal(t, HealthStatusRed, view.HealthStatus)
}

func TestUpdate_StoreFailureIsWrappedNotNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAdvisorRepository(ctrl)

	storeErr := errors.New("could not serialize access")
	repo.EXPECT().Replace(gomock.Any(), 1, gomock.Any()).Return(storeErr)

	controller := New(repo, services.NewHealthStatusService(nil), services.NewTransactionService(database.DB{}), nil, nil)

	err := controller.Update(context.Background(), 1, johnDoe())
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGetAll_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAdvisorRepository(ctrl)

	repo.EXPECT().ListAll(gomock.Any()).Return(nil, errors.New("timeout"))

	controller := New(repo, services.NewHealthStatusService(nil), services.NewTransactionService(database.DB{}), nil, nil)

	views, err := controller.GetAll(context.Background())
	assert.Error(t, err)
	assert.Nil(t, views)
}

func TestDelete_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAdvisorRepository(ctrl)

	advisor := johnDoe()
	storeErr := errors.New("disk full")
	repo.EXPECT().FindByID(gomock.Any(), 1).Return(&advisor, nil)
	repo.EXPECT().Delete(gomock.Any(), 1).Return(storeErr)

	controller := New(repo, services.NewHealthStatusService(nil), services.NewTransactionService(database.DB{}), nil, nil)

	err := controller.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrNotFound)
}
