package session_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dmengine/internal/game/session"
)

func TestState_ActiveMap(t *testing.T) {
	st := session.New()
	assert.Nil(t, st.ActiveMap())
	st.Maps = []*session.Map{{ID: "m1", Name: "Cave"}, {ID: "m2", Name: "Forest Road"}}
	st.ActiveMapID = "m2"
	assert.Equal(t, "Forest Road", st.ActiveMap().Name)

	m, ok := st.FindMap("road")
	require.True(t, ok)
	assert.Equal(t, "m2", m.ID)
}

func TestState_FindPlayerPrefersDisplayName(t *testing.T) {
	st := session.New()
	require.NoError(t, st.AddPlayer(&session.Player{PeerID: "p1", DisplayName: "Sam", CharacterName: "Thorin"}))
	require.NoError(t, st.AddPlayer(&session.Player{PeerID: "p2", DisplayName: "Thorin", CharacterName: "Aria"}))

	p, ok := st.FindPlayer("thorin")
	require.True(t, ok)
	assert.Equal(t, "p2", p.PeerID)

	p, ok = st.FindPlayer("aria")
	require.True(t, ok)
	assert.Equal(t, "p2", p.PeerID)

	assert.Error(t, st.AddPlayer(&session.Player{PeerID: "p1"}))
	require.NoError(t, st.RemovePlayer("p1"))
	assert.Error(t, st.RemovePlayer("p1"))
}

func TestState_ExpireLights(t *testing.T) {
	st := session.New()
	st.Lights = []*session.LightSource{
		{ID: "torch", DurationSeconds: 3600},
		{ID: "flame", DurationSeconds: 0},
	}
	st.Time.Advance(1800)
	assert.Empty(t, st.ExpireLights())
	assert.Equal(t, int64(1800), st.Lights[0].Remaining(st.Time.Seconds))

	st.Time.Advance(1800)
	expired := st.ExpireLights()
	require.Len(t, expired, 1)
	assert.Equal(t, "torch", expired[0].ID)
	require.Len(t, st.Lights, 1)
	assert.Equal(t, int64(-1), st.Lights[0].Remaining(st.Time.Seconds))
}

func TestEnvironment_IsDefault(t *testing.T) {
	assert.True(t, session.DefaultEnvironment().IsDefault())
	env := session.DefaultEnvironment()
	env.AmbientLight = session.LightDim
	assert.False(t, env.IsDefault())
	assert.False(t, session.ValidLight("twilight"))
}

func TestStore_MutateKeepsPartialChanges(t *testing.T) {
	s := session.NewStore(nil)
	err := s.Mutate(func(st *session.State) error {
		st.Environment.Weather = "rain"
		return errors.New("boom")
	})
	require.Error(t, err)
	s.Read(func(st *session.State) {
		assert.Equal(t, "rain", st.Environment.Weather)
	})
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := session.NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Mutate(func(st *session.State) error {
				st.Time.Advance(1)
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			s.Read(func(st *session.State) { _ = st.Time.String() })
		}()
	}
	wg.Wait()
	s.Read(func(st *session.State) {
		assert.Equal(t, int64(20), st.Time.Seconds)
	})
}

func TestLoadYAML(t *testing.T) {
	st, err := session.LoadYAML(strings.NewReader(`
active_map_id: m1
maps:
  - id: m1
    name: Crypt
    width: 20
    height: 20
    tokens:
      - id: t1
        label: Skeleton
        x: 3
        y: 4
        current_hp: 13
        max_hp: 13
strongholds:
  - id: b1
    name: Keep
    linked: true
    turn_frequency_days: 7
`))
	require.NoError(t, err)
	assert.Equal(t, "Crypt", st.ActiveMap().Name)
	assert.Equal(t, session.LightBright, st.Environment.AmbientLight)
	assert.Len(t, st.Strongholds, 1)

	_, err = session.LoadYAML(strings.NewReader("bogus: 1\n"))
	assert.Error(t, err)
}
