package schedulecache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebuddy/reminder-engine/internal/model"
)

func TestPutGetFiltersInactive(t *testing.T) {
	c := New(0)
	subject := model.Subject{ID: uuid.New(), OwnerID: uuid.New(), Name: "Biscuit", Category: "feline"}

	c.Put(&model.ScheduleSnapshot{
		Subject: subject,
		Schedules: []*model.TreatmentSchedule{
			{ID: uuid.New(), SubjectID: subject.ID, Kind: model.ScheduleFixedInterval, Slots: []string{"08:00"}, Active: true},
			{ID: uuid.New(), SubjectID: subject.ID, Kind: model.ScheduleFixedInterval, Slots: []string{"20:00"}, Active: false},
		},
	})

	snap := c.GetActiveSchedules(subject.ID)
	require.NotNil(t, snap)
	assert.Equal(t, "Biscuit", snap.Subject.Name)
	require.Len(t, snap.Schedules, 1)
	assert.Equal(t, []string{"08:00"}, snap.Schedules[0].Slots)
}

func TestGetUnknownSubject(t *testing.T) {
	c := New(0)
	assert.Nil(t, c.GetActiveSchedules(uuid.New()))
}

func TestSubjectsListsAndForgets(t *testing.T) {
	c := New(0)
	a := model.Subject{ID: uuid.New()}
	b := model.Subject{ID: uuid.New()}
	c.Put(&model.ScheduleSnapshot{Subject: a})
	c.Put(&model.ScheduleSnapshot{Subject: b})

	assert.Len(t, c.Subjects(), 2)

	c.Forget(a.ID)
	subjects := c.Subjects()
	require.Len(t, subjects, 1)
	assert.Equal(t, b.ID, subjects[0])
}

func TestPutReplacesSnapshot(t *testing.T) {
	c := New(0)
	subject := model.Subject{ID: uuid.New(), Name: "Biscuit"}

	c.Put(&model.ScheduleSnapshot{Subject: subject, Schedules: []*model.TreatmentSchedule{
		{ID: uuid.New(), Kind: model.ScheduleFixedInterval, Slots: []string{"08:00"}, Active: true},
	}})
	c.Put(&model.ScheduleSnapshot{Subject: subject, Schedules: []*model.TreatmentSchedule{
		{ID: uuid.New(), Kind: model.ScheduleFixedInterval, Slots: []string{"09:00"}, Active: true},
	}})

	snap := c.GetActiveSchedules(subject.ID)
	require.Len(t, snap.Schedules, 1)
	assert.Equal(t, []string{"09:00"}, snap.Schedules[0].Slots)
}
