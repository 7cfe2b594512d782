package services

import (
	"context"
	"testing"
	"time"

	"okrproject/errs"
	"okrproject/metrics"
	"okrproject/models"
	"okrproject/okr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type objectiveFixture struct {
	svc        ObjectiveService
	objectives *memObjectiveRepo
	users      *memUserRepo
	alice      models.User
	bob        models.User
	carol      models.User
}

func newObjectiveFixture(t *testing.T) *objectiveFixture {
	t.Helper()
	f := &objectiveFixture{
		objectives: newMemObjectiveRepo(),
		users:      newMemUserRepo(),
	}
	f.alice = f.users.add("alice", models.RoleEmployee, "Backend")
	f.bob = f.users.add("bob", models.RoleEmployee, "Backend")
	f.carol = f.users.add("carol", models.RoleManager, "QA")
	f.svc = NewObjectiveService(f.objectives, f.users, metrics.Nop{}, zap.NewNop())
	return f
}

func date(y int, m time.Month, d int) models.Date {
	return models.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func createRequest(title, category string, owners ...models.User) *models.CreateObjectiveRequest {
	req := &models.CreateObjectiveRequest{
		Title:      title,
		StartDate:  date(2024, time.January, 1),
		EndDate:    date(2024, time.June, 30),
		Department: "Backend",
		Category:   category,
		KeyResults: []models.KeyResultInput{
			{Title: "ship", CurrentValue: 50, TargetValue: 100},
			{Title: "adopt", CurrentValue: 0, TargetValue: 10},
		},
	}
	for _, o := range owners {
		req.Owners = append(req.Owners, o.ID.Hex())
	}
	return req
}

func TestCreateObjectiveComputesProgressAndDefaultsOwner(t *testing.T) {
	f := newObjectiveFixture(t)
	p := f.alice.Principal()

	o, err := f.svc.Create(context.Background(), p, createRequest("Launch API", models.CategoryIndividual))
	require.NoError(t, err)

	assert.False(t, o.ID.IsZero())
	assert.Equal(t, f.alice.ID, o.CreatedBy)
	assert.Equal(t, f.alice.ID, o.Owners[0])
	assert.Len(t, o.Owners, 1)
	assert.Equal(t, 50, o.KeyResults[0].Progress)
	assert.Equal(t, 0, o.KeyResults[1].Progress)
	assert.Equal(t, 25, o.Progress)
	assert.Equal(t, models.StatusInProgress, o.Status)
	assert.Equal(t, "launch api", o.TitleKey)

	stored, err := f.objectives.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, stored.Progress)
}

func TestCreateObjectiveRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *objectiveFixture, req *models.CreateObjectiveRequest)
	}{
		{
			name: "end before start",
			mutate: func(_ *objectiveFixture, req *models.CreateObjectiveRequest) {
				req.EndDate = date(2023, time.December, 1)
			},
		},
		{
			name: "end equals start",
			mutate: func(_ *objectiveFixture, req *models.CreateObjectiveRequest) {
				req.EndDate = req.StartDate
			},
		},
		{
			name: "current above target",
			mutate: func(_ *objectiveFixture, req *models.CreateObjectiveRequest) {
				req.KeyResults[0].CurrentValue = 120
			},
		},
		{
			name: "team with one owner",
			mutate: func(f *objectiveFixture, req *models.CreateObjectiveRequest) {
				req.Category = models.CategoryTeam
				req.Owners = []string{f.alice.ID.Hex()}
			},
		},
		{
			name: "individual with two owners",
			mutate: func(f *objectiveFixture, req *models.CreateObjectiveRequest) {
				req.Owners = []string{f.alice.ID.Hex(), f.bob.ID.Hex()}
			},
		},
		{
			name: "unknown owner",
			mutate: func(_ *objectiveFixture, req *models.CreateObjectiveRequest) {
				req.Owners = []string{"65a000000000000000000000"}
			},
		},
		{
			name: "unknown department",
			mutate: func(_ *objectiveFixture, req *models.CreateObjectiveRequest) {
				req.Department = "Legal"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newObjectiveFixture(t)
			req := createRequest("Launch API", models.CategoryIndividual)
			tt.mutate(f, req)

			_, err := f.svc.Create(context.Background(), f.alice.Principal(), req)
			require.Error(t, err)
			assert.True(t, errs.IsValidation(err), "got %v", err)

			all, _ := f.objectives.GetAll(context.Background())
			assert.Empty(t, all)
		})
	}
}

func TestCreateObjectiveTitleIsUniqueIgnoringCase(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Launch API", models.CategoryIndividual))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.bob.Principal(), createRequest("  launch api ", models.CategoryIndividual))
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestCreateTeamObjective(t *testing.T) {
	f := newObjectiveFixture(t)

	o, err := f.svc.Create(context.Background(), f.alice.Principal(), createRequest("Team goal", models.CategoryTeam, f.alice, f.bob))
	require.NoError(t, err)
	assert.Equal(t, []string{f.alice.ID.Hex(), f.bob.ID.Hex()}, []string{o.Owners[0].Hex(), o.Owners[1].Hex()})
}

func TestGetObjectiveIncludesQuarters(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Launch API", models.CategoryIndividual))
	require.NoError(t, err)

	detail, err := f.svc.Get(ctx, f.bob.Principal(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1", "Q2"}, detail.Quarters)

	_, err = f.svc.Get(ctx, f.bob.Principal(), f.alice.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListObjectivesAppliesFilter(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Individual goal", models.CategoryIndividual))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.alice.Principal(), createRequest("Team goal", models.CategoryTeam, f.alice, f.bob))
	require.NoError(t, err)

	all, err := f.svc.List(ctx, f.carol.Principal(), okr.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	teams, err := f.svc.List(ctx, f.carol.Principal(), okr.Filter{Category: models.CategoryTeam})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Team goal", teams[0].Title)

	_, err = f.svc.List(ctx, nil, okr.Filter{})
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestUpdateObjectiveAuthorization(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Team goal", models.CategoryTeam, f.bob, f.carol))
	require.NoError(t, err)

	title := "Renamed"
	req := &models.UpdateObjectiveRequest{Title: &title}

	// alice created it without being an owner
	_, err = f.svc.Update(ctx, f.alice.Principal(), o.ID, req)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.bob.Principal(), o.ID, req)
	require.NoError(t, err)

	outsider := f.users.add("dave", models.RoleAdmin, "HR")
	_, err = f.svc.Update(ctx, outsider.Principal(), o.ID, req)
	assert.ErrorIs(t, err, errs.ErrForbidden)
}

func TestUpdateObjectiveRecomputesProgressBeforePersisting(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Launch API", models.CategoryIndividual))
	require.NoError(t, err)
	firstID := o.KeyResults[0].ID

	req := &models.UpdateObjectiveRequest{
		KeyResults: []models.KeyResultInput{
			{ID: firstID.Hex(), Title: "ship", CurrentValue: 100, TargetValue: 100},
			{Title: "new", CurrentValue: 1, TargetValue: 2},
		},
	}
	res, err := f.svc.Update(ctx, f.alice.Principal(), o.ID, req)
	require.NoError(t, err)
	assert.Empty(t, res.Notices)

	stored, err := f.objectives.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, firstID, stored.KeyResults[0].ID)
	assert.False(t, stored.KeyResults[1].ID.IsZero())
	assert.Equal(t, 100, stored.KeyResults[0].Progress)
	assert.Equal(t, 50, stored.KeyResults[1].Progress)
	assert.Equal(t, 75, stored.Progress)
	assert.Equal(t, models.StatusInProgress, stored.Status)

	req.KeyResults[1].CurrentValue = 2
	_, err = f.svc.Update(ctx, f.alice.Principal(), o.ID, req)
	require.NoError(t, err)
	stored, _ = f.objectives.GetByID(ctx, o.ID)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}

func TestUpdateObjectiveRejectsBadKeyResultWithoutPersisting(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Launch API", models.CategoryIndividual))
	require.NoError(t, err)

	req := &models.UpdateObjectiveRequest{
		KeyResults: []models.KeyResultInput{{Title: "ship", CurrentValue: 11, TargetValue: 10}},
	}
	_, err = f.svc.Update(ctx, f.alice.Principal(), o.ID, req)
	assert.True(t, errs.IsValidation(err))

	stored, _ := f.objectives.GetByID(ctx, o.ID)
	assert.Equal(t, 25, stored.Progress)
	assert.Len(t, stored.KeyResults, 2)
}

func TestUpdateCategoryToIndividualTruncatesOwners(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Team goal", models.CategoryTeam, f.bob, f.alice))
	require.NoError(t, err)

	individual := models.CategoryIndividual
	res, err := f.svc.Update(ctx, f.alice.Principal(), o.ID, &models.UpdateObjectiveRequest{Category: &individual})
	require.NoError(t, err)

	assert.Equal(t, []string{okr.OwnersTruncatedNotice}, res.Notices)
	assert.Equal(t, models.CategoryIndividual, res.Objective.Category)
	require.Len(t, res.Objective.Owners, 1)
	assert.Equal(t, f.bob.ID, res.Objective.Owners[0])
}

func TestUpdateCategoryToIndividualWithExplicitOwnersIsValidated(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Team goal", models.CategoryTeam, f.bob, f.alice))
	require.NoError(t, err)

	individual := models.CategoryIndividual
	_, err = f.svc.Update(ctx, f.alice.Principal(), o.ID, &models.UpdateObjectiveRequest{
		Category: &individual,
		Owners:   []string{f.bob.ID.Hex(), f.alice.ID.Hex()},
	})
	assert.True(t, errs.IsValidation(err))

	res, err := f.svc.Update(ctx, f.alice.Principal(), o.ID, &models.UpdateObjectiveRequest{
		Category: &individual,
		Owners:   []string{f.alice.ID.Hex()},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Notices)
}

func TestUpdateObjectiveKeepsOwnTitle(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Launch API", models.CategoryIndividual))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.alice.Principal(), createRequest("Other", models.CategoryIndividual))
	require.NoError(t, err)

	same := "LAUNCH API"
	_, err = f.svc.Update(ctx, f.alice.Principal(), o.ID, &models.UpdateObjectiveRequest{Title: &same})
	require.NoError(t, err)

	taken := "other"
	_, err = f.svc.Update(ctx, f.alice.Principal(), o.ID, &models.UpdateObjectiveRequest{Title: &taken})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestDeleteObjective(t *testing.T) {
	f := newObjectiveFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, f.alice.Principal(), createRequest("Launch API", models.CategoryIndividual))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.bob.Principal(), o.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, f.alice.Principal(), o.ID))

	err = f.svc.Delete(ctx, f.alice.Principal(), o.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
