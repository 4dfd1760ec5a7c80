package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ts = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at() *time.Time {
	t := ts
	return &t
}

func fullUser(uni, country, field string) *UserLivestream {
	return &UserLivestream{
		UserID:          "user-1",
		User:            &UserProfile{UniversityCode: uni, CountryCode: country, FieldOfStudyID: field},
		Participated:    at(),
		Registered:      at(),
		TalentPool:      at(),
		Applied:         at(),
		JobApplications: map[string]time.Time{"job-1": ts, "job-2": ts},
	}
}

func deltas(e *Engine[UserLivestream], newState, oldState *UserLivestream) Accumulator {
	acc := Accumulator{}
	e.ComputeDeltas(newState, oldState, acc)
	return acc
}

func TestIdenticalSnapshotsYieldNothing(t *testing.T) {
	e := NewLivestreamEngine()
	cases := map[string][2]*UserLivestream{
		"both nil":      {nil, nil},
		"full profile":  {fullUser("u1", "c1", "f1"), fullUser("u1", "c1", "f1")},
		"no dimensions": {{UserID: "x", Registered: at()}, {UserID: "x", Registered: at()}},
	}
	for name, pair := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, deltas(e, pair[0], pair[1]))
		})
	}
}

func TestFirstParticipationWithoutDimensions(t *testing.T) {
	e := NewLivestreamEngine()
	before := &UserLivestream{UserID: "user-1"}
	after := &UserLivestream{UserID: "user-1", Participated: at()}

	assert.Equal(t, Accumulator{"generalStats.numberOfParticipants": 1}, deltas(e, after, before))
}

func TestRegisterAndParticipateInsideUnchangedDimensions(t *testing.T) {
	e := NewLivestreamEngine()
	profile := &UserProfile{UniversityCode: "u1", CountryCode: "c1"}
	before := &UserLivestream{UserID: "user-1", User: profile}
	after := &UserLivestream{UserID: "user-1", User: profile, Registered: at(), Participated: at()}

	assert.Equal(t, Accumulator{
		"generalStats.numberOfParticipants":        1,
		"generalStats.numberOfRegistrations":       1,
		"universityStats.u1.numberOfParticipants":  1,
		"universityStats.u1.numberOfRegistrations": 1,
		"countryStats.c1.numberOfParticipants":     1,
		"countryStats.c1.numberOfRegistrations":    1,
	}, deltas(e, after, before))
}

func TestDimensionMoveConservesGeneralCounters(t *testing.T) {
	e := NewLivestreamEngine()
	acc := deltas(e, fullUser("u2", "c1", "f1"), fullUser("u1", "c1", "f1"))

	assert.Equal(t, Accumulator{
		"universityStats.u1.numberOfParticipants":       -1,
		"universityStats.u1.numberOfRegistrations":      -1,
		"universityStats.u1.numberOfTalentPoolProfiles": -1,
		"universityStats.u1.numberOfApplicants":         -1,
		"universityStats.u1.numberOfJobApplications":    -2,
		"universityStats.u2.numberOfParticipants":       1,
		"universityStats.u2.numberOfRegistrations":      1,
		"universityStats.u2.numberOfTalentPoolProfiles": 1,
		"universityStats.u2.numberOfApplicants":         1,
		"universityStats.u2.numberOfJobApplications":    2,
	}, acc)
}

func TestDimensionAppearsAndDisappears(t *testing.T) {
	e := NewLivestreamEngine()
	without := &UserLivestream{UserID: "user-1", Participated: at()}
	with := &UserLivestream{UserID: "user-1", Participated: at(), User: &UserProfile{CountryCode: "c9"}}

	assert.Equal(t, Accumulator{"countryStats.c9.numberOfParticipants": 1}, deltas(e, with, without))
	assert.Equal(t, Accumulator{"countryStats.c9.numberOfParticipants": -1}, deltas(e, without, with))
}

func TestBlankDimensionKeysAreSkipped(t *testing.T) {
	e := NewLivestreamEngine()
	after := &UserLivestream{UserID: "user-1", Participated: at(), User: &UserProfile{UniversityCode: "  "}}

	assert.Equal(t, Accumulator{"generalStats.numberOfParticipants": 1}, deltas(e, after, nil))
}

func TestSimultaneousChangesOnTwoAxesAreIndependent(t *testing.T) {
	e := NewLivestreamEngine()
	before := &UserLivestream{UserID: "user-1", Registered: at(), User: &UserProfile{UniversityCode: "u1", FieldOfStudyID: "f1"}}
	after := &UserLivestream{UserID: "user-1", Registered: at(), User: &UserProfile{UniversityCode: "u2", FieldOfStudyID: "f2"}}

	assert.Equal(t, Accumulator{
		"universityStats.u1.numberOfRegistrations":   -1,
		"universityStats.u2.numberOfRegistrations":   1,
		"fieldOfStudyStats.f1.numberOfRegistrations": -1,
		"fieldOfStudyStats.f2.numberOfRegistrations": 1,
	}, deltas(e, after, before))
}

func TestJobApplicationCountDifference(t *testing.T) {
	e := NewLivestreamEngine()
	before := &UserLivestream{UserID: "user-1", JobApplications: map[string]time.Time{"a": ts}}
	after := &UserLivestream{UserID: "user-1", Applied: at(), JobApplications: map[string]time.Time{"a": ts, "b": ts, "c": ts}}

	assert.Equal(t, Accumulator{
		"generalStats.numberOfApplicants":      1,
		"generalStats.numberOfJobApplications": 2,
	}, deltas(e, after, before))
}

func TestDeletionAndCreationAreSymmetric(t *testing.T) {
	e := NewLivestreamEngine()
	snapshots := []*UserLivestream{
		nil,
		{UserID: "user-1"},
		{UserID: "user-1", Participated: at()},
		fullUser("u1", "c1", "f1"),
		fullUser("u2", "", "f1"),
		{UserID: "user-1", Registered: at(), User: &UserProfile{CountryCode: "c2"}},
	}
	for i, a := range snapshots {
		for j, b := range snapshots {
			forward := deltas(e, b, a)
			backward := deltas(e, a, b)
			forward.Merge(backward)
			assert.Empty(t, forward, "pair %d -> %d", i, j)
		}
	}
}

func TestGroupEngineUsesUniversityOnly(t *testing.T) {
	e := NewGroupEngine()
	before := &UserLivestream{UserID: "user-1", User: &UserProfile{UniversityCode: "u1", CountryCode: "c1"}}
	after := &UserLivestream{
		UserID:          "user-1",
		User:            &UserProfile{UniversityCode: "u1", CountryCode: "c1"},
		Participated:    at(),
		Applied:         at(),
		JobApplications: map[string]time.Time{"j": ts},
	}

	assert.Equal(t, Accumulator{
		"generalStats.numberOfParticipants":       1,
		"universityStats.u1.numberOfParticipants": 1,
	}, deltas(e, after, before))
}

func TestComputeLeafDoesNotDescend(t *testing.T) {
	e := NewLivestreamEngine()
	acc := Accumulator{}
	e.ComputeLeaf(fullUser("u1", "c1", "f1"), nil, acc, DimensionContext{Field: UniversityStats, Key: "u1"})

	assert.Len(t, acc, 5)
	for path := range acc {
		assert.Contains(t, path, "universityStats.u1.")
	}
}
