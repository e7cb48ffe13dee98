package scheduler

import (
	"testing"
	"time"

	"stellarbot/src-server/utils"
	"stellarbot/src-server/utils/discordtest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPremiumSweepIsScheduled(t *testing.T) {
	as, _ := discordtest.NewApp(t)

	s, err := PremiumSweep(as)
	require.NoError(t, err)
	defer as.GracefulShutdown()

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, []string{premiumSweepTag}, jobs[0].Tags())
	assert.True(t, jobs[0].NextRun().After(time.Now().Add(time.Hour)), "first run waits a full interval")
}

func TestRunPremiumSweep(t *testing.T) {
	as, fake := discordtest.NewApp(t)
	fake.AddMember(&discordgo.Member{
		User:     &discordgo.User{ID: "900"},
		JoinedAt: time.Now().Add(-30 * 24 * time.Hour),
		Roles:    []string{utils.PremiumRoleID},
	})

	runPremiumSweep(as)

	require.Len(t, fake.RoleRemoves, 1)
	assert.Equal(t, "900", fake.RoleRemoves[0].UserID)
}
