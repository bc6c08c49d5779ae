package storage

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != DifficultyMedium {
			t.Errorf("Expected medium difficulty")
		}
		if prefs.PlayerColor != ColorWhite {
			t.Errorf("Expected human to play White by default")
		}
	})

	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Abandoned:   2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})
}

func openTemp(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenDataDir(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTemp(t)

	prefs, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, "Player", prefs.Username)

	prefs.Username = "ada"
	prefs.Difficulty = DifficultyHard
	prefs.PlayerColor = ColorBlack
	prefs.Workers = 6
	require.NoError(t, s.SavePreferences(prefs))

	got, err := s.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, DifficultyHard, got.Difficulty)
	assert.Equal(t, ColorBlack, got.PlayerColor)
	assert.Equal(t, 6, got.Workers)
}

func TestFirstLaunch(t *testing.T) {
	s := openTemp(t)

	first, err := s.IsFirstLaunch()
	require.NoError(t, err)
	assert.True(t, first)

	require.NoError(t, s.MarkFirstLaunchComplete())
	first, err = s.IsFirstLaunch()
	require.NoError(t, err)
	assert.False(t, first)
}

func TestRecordGame(t *testing.T) {
	s := openTemp(t)

	results := []GameResult{
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: DifficultyEasy, Plies: 30, Duration: time.Minute},
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: DifficultyHard, Plies: 40},
		{Won: false, Mode: ModeHumanVsComputer, Difficulty: DifficultyHard, Plies: 20},
		{Abandoned: true, Mode: ModeHumanVsHuman},
	}
	for _, r := range results {
		require.NoError(t, s.RecordGame(r))
	}

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.GamesPlayed)
	assert.Equal(t, 2, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 1, stats.Abandoned)
	assert.Equal(t, 2, stats.LongestWinStrk)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 90, stats.TotalPlies)
	assert.Equal(t, 2, stats.WinsByMode["hvc"])
	assert.Equal(t, 1, stats.WinsByDiff["hard"])
	assert.Equal(t, time.Minute, stats.TotalPlayTime)
}

func TestRecordGameConcurrent(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.RecordGame(GameResult{Won: true}))
		}()
	}
	wg.Wait()

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 8, stats.GamesPlayed)
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	dbDir, err := DatabaseDirIn(dataDir)
	require.NoError(t, err)
	assert.DirExists(t, dbDir)
}
