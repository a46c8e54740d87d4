package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/blockscene/internal/hcl"
	"github.com/vk/blockscene/internal/modelpipe"
	"github.com/vk/blockscene/internal/placement"
	"github.com/vk/blockscene/internal/plan"
	"github.com/vk/blockscene/internal/testutil"
)

// setupAppTest creates an app over the built-in scene with an in-memory
// toolchain. A fresh share directory is used unless cfg names one.
func setupAppTest(t *testing.T, cfg Config, opts ...Option) (*App, *bytes.Buffer) {
	t.Helper()

	prefix := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "share", "ur_description"), 0o755))
	t.Setenv("AMENT_PREFIX_PATH", prefix)

	if cfg.ShareDir == "" {
		cfg.ShareDir = t.TempDir()
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = -1
	}
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	out := &bytes.Buffer{}
	opts = append([]Option{WithLogOutput(logs), WithToolchain(&testutil.FakeToolchain{})}, opts...)
	testApp := NewApp(out, appConfig, hcl.NewLoader(), opts...)

	t.Cleanup(func() {
		if os.Getenv("BLOCKSCENE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return testApp, out
}

func blockCount(m *plan.Manifest) int {
	n := 0
	for _, a := range m.Actions {
		if strings.HasPrefix(a.ID, "spawn_block") {
			n++
		}
	}
	return n
}

func TestApp_DryRun(t *testing.T) {
	// --- Arrange ---
	share := t.TempDir()
	planPath := filepath.Join(t.TempDir(), "plan.yaml")
	testApp, out := setupAppTest(t, Config{ShareDir: share, Seed: 42, DryRun: true, PlanOut: planPath})

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	m := testutil.ReadManifest(t, out)

	blocks := blockCount(m)
	assert.Contains(t, []int{4, 5}, blocks)
	assert.Len(t, m.Actions, 16+2*blocks)
	assert.Equal(t, "env.GZ_SIM_RESOURCE_PATH", m.Actions[0].ID)
	assert.Equal(t, map[string]string{"ur_type": "ur5e"}, m.Arguments)

	for i := 1; i <= blocks; i++ {
		sdf, err := os.ReadFile(filepath.Join(share, "models", fmt.Sprintf("block%d.sdf", i)))
		require.NoError(t, err)
		assert.Contains(t, string(sdf), "PosePublisher")
		_, err = os.Stat(filepath.Join(share, "models", fmt.Sprintf("block%d.urdf", i)))
		assert.NoError(t, err)
	}

	f, err := os.Open(planPath)
	require.NoError(t, err)
	defer f.Close()
	fromFile := testutil.ReadManifest(t, f)
	assert.Equal(t, m, fromFile)
}

func TestApp_SameSeedSameLayout(t *testing.T) {
	// --- Arrange ---
	share := t.TempDir()
	spawns := func() []string {
		testApp, out := setupAppTest(t, Config{ShareDir: share, Seed: 7, DryRun: true})
		require.NoError(t, testApp.Run(context.Background()))
		m := testutil.ReadManifest(t, out)

		var cmds []string
		for _, a := range m.Actions {
			if strings.HasPrefix(a.ID, "spawn_block") {
				cmds = append(cmds, a.Command)
			}
		}
		return cmds
	}

	// --- Act ---
	first, second := spawns(), spawns()

	// --- Assert ---
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestApp_RunExecutesPlan(t *testing.T) {
	// --- Arrange ---
	share := t.TempDir()
	launcher := &testutil.FakeLauncher{}
	testApp, _ := setupAppTest(t, Config{ShareDir: share, Seed: 3}, WithLauncher(launcher))

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	ids := launcher.LaunchedIDs()
	assert.Contains(t, ids, "spawn_block1")
	assert.Contains(t, ids, "block1_state_publisher")
	assert.Less(t, slices.Index(ids, "gazebo"), slices.Index(ids, "spawn_block1"))
	assert.Less(t, slices.Index(ids, "joint_state_broadcaster_spawner"), slices.Index(ids, "rviz2"))

	models := filepath.Join(share, "models")
	for _, rec := range launcher.Launched() {
		i := slices.IndexFunc(rec.Env, func(kv string) bool { return strings.HasPrefix(kv, "GZ_SIM_RESOURCE_PATH=") })
		require.GreaterOrEqual(t, i, 0, "action %s", rec.ID)
		assert.Contains(t, rec.Env[i], models)
	}

	// --- Assert health endpoints after the run ---
	handler := testApp.healthMux(testutil.Context())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/actions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "env.GZ_SIM_RESOURCE_PATH exited\n")
	assert.Contains(t, rec.Body.String(), "rviz2 exited\n")
}

func TestApp_RunFailure(t *testing.T) {
	launcher := &testutil.FakeLauncher{Behavior: func(ctx context.Context, a *plan.Action) error {
		if a.ID == "gazebo" {
			return errors.New("exit status 255")
		}
		return nil
	}}
	testApp, _ := setupAppTest(t, Config{Seed: 3}, WithLauncher(launcher))

	err := testApp.Run(context.Background())

	assert.ErrorContains(t, err, "execution failed: action gazebo exited with error: exit status 255")
}

func TestApp_ToolFailureStopsBeforeLaunch(t *testing.T) {
	// --- Arrange ---
	share := t.TempDir()
	tools := &testutil.FakeToolchain{ExpandFn: func(string, []modelpipe.Param) (string, error) {
		return "", &modelpipe.ToolError{Command: []string{"xacro", "block.urdf.xacro"}, Err: errors.New("exit status 2")}
	}}
	launcher := &testutil.FakeLauncher{}
	testApp, _ := setupAppTest(t, Config{ShareDir: share, Seed: 1}, WithToolchain(tools), WithLauncher(launcher))

	// --- Act ---
	err := testApp.Run(context.Background())

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorContains(t, err, "error generating description for block1")
	var toolErr *modelpipe.ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Empty(t, launcher.LaunchedIDs())
	_, statErr := os.Stat(filepath.Join(share, "models", "block1.sdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestApp_PlacementCap(t *testing.T) {
	// A single attempt per block cannot always avoid collisions; any error
	// must be the exhaustion sentinel.
	for seed := uint64(1); seed <= 20; seed++ {
		testApp, _ := setupAppTest(t, Config{Seed: seed, DryRun: true, MaxAttempts: 1})
		err := testApp.Run(context.Background())
		if err != nil {
			assert.ErrorIs(t, err, placement.ErrPlacementExhausted)
		}
	}
}

func TestNewApp_PanicsOnBadScene(t *testing.T) {
	cfg, err := NewConfig(Config{ScenePath: filepath.Join(t.TempDir(), "missing.hcl"), MaxAttempts: -1})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(&bytes.Buffer{}, cfg, hcl.NewLoader())
	})
}

func TestNewApp_TimeSeed(t *testing.T) {
	testApp, _ := setupAppTest(t, Config{DryRun: true})
	assert.NotZero(t, testApp.Seed())
	assert.Equal(t, "ros2_ur5_interface", testApp.Scene().Package.Name)
}

func TestHealthMux(t *testing.T) {
	testApp, _ := setupAppTest(t, Config{Seed: 1, DryRun: true})
	handler := testApp.healthMux(testutil.Context())

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK\n", rec.Body.String())
	})

	t.Run("actions before the run", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/actions", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{MaxAttempts: -1}},
		{name: "bounded attempts", cfg: Config{MaxAttempts: 100}},
		{name: "bad attempts", cfg: Config{MaxAttempts: -2}, wantErr: "MaxAttempts"},
		{name: "bad port", cfg: Config{HealthcheckPort: 70000}, wantErr: "out of range"},
		{name: "dry run with health check", cfg: Config{DryRun: true, HealthcheckPort: 8080}, wantErr: "not available in a dry run"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg, *cfg)
		})
	}
}

func TestNewConfig_CopiesArguments(t *testing.T) {
	args := map[string]string{"ur_type": "ur3"}
	cfg, err := NewConfig(Config{Arguments: args})
	require.NoError(t, err)

	args["ur_type"] = "ur5"
	assert.Equal(t, "ur3", cfg.Arguments["ur_type"])
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}
