package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/blockscene/internal/catalog"
	"github.com/vk/blockscene/internal/config"
	"github.com/vk/blockscene/internal/palette"
	"github.com/vk/blockscene/internal/placement"
	"github.com/vk/blockscene/internal/plan"
	"github.com/vk/blockscene/internal/testutil"
)

const shareRoot = "/opt/ros/jazzy/share"

func fakeShare(pkg string) (string, error) {
	return filepath.Join(shareRoot, pkg), nil
}

func actionByID(t *testing.T, m *config.Model, id string) *plan.Action {
	t.Helper()
	for _, a := range m.Actions {
		if a.ID == id {
			return a
		}
	}
	require.Failf(t, "action not found", "no action with id %q", id)
	return nil
}

func writeScene(t *testing.T, dir, name, src string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
	return p
}

func TestLoader_DefaultScene(t *testing.T) {
	// --- Arrange ---
	ctx := testutil.Context()
	share := filepath.Join(shareRoot, "ros2_ur5_interface")
	models := filepath.Join(share, "models")

	// --- Act ---
	model, err := NewLoader().Load(ctx, config.LoadOptions{Share: fakeShare})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, config.Package{Name: "ros2_ur5_interface", ShareDir: share, ModelsDir: models}, model.Package)
	assert.Equal(t, map[string]string{"ur_type": "ur5e"}, model.Resolved)
	require.Len(t, model.Arguments, 1)
	assert.Len(t, model.Arguments[0].Choices, 9)

	require.NotNil(t, model.Blocks)
	assert.Equal(t, catalog.DefaultBlocks, model.Blocks.Catalog)
	assert.Equal(t, palette.Default, model.Blocks.Palette)
	assert.Equal(t, placement.DefaultOptions(), model.Blocks.Placement)
	assert.Equal(t, models+"/block.urdf.xacro", model.Blocks.Template)
	assert.Equal(t, models, model.Blocks.ModelsDir)

	require.Len(t, model.Actions, 16)
	env := actionByID(t, model, "env.GZ_SIM_RESOURCE_PATH")
	assert.Equal(t, &plan.EnvChange{
		Name:   "GZ_SIM_RESOURCE_PATH",
		Values: []string{models, shareRoot},
		Append: true,
	}, env.Env)

	ur := actionByID(t, model, "ur_state_publisher")
	require.NotNil(t, ur.Description)
	assert.Equal(t, "robot_description", ur.Description.Parameter)
	assert.Equal(t, "ur5e", ur.Description.Params["ur_type"])
	assert.Equal(t, "", ur.Description.Params["tf_prefix"])
	assert.Equal(t, share+"/config/ur_controllers.yaml", ur.Description.Params["simulation_controllers"])
	assert.Equal(t, []string{"ur_type"}, ur.UsesArguments)

	spawnUR := actionByID(t, model, "spawn_ur")
	assert.Equal(t, "ur5e", spawnUR.Entity)
	assert.Equal(t, []string{"ur_type"}, spawnUR.UsesArguments)

	gazebo := actionByID(t, model, "gazebo")
	assert.Equal(t, plan.RoleSimulator, gazebo.Role)
	assert.Equal(t, "-r -s "+share+"/worlds/empty.world", gazebo.LaunchArguments["gz_args"])
	assert.Empty(t, gazebo.UsesArguments)

	camera := actionByID(t, model, "spawn_camera")
	assert.Equal(t, &placement.Pose{X: "-0.5", Y: "0.5", Z: "1.2", Roll: "0", Pitch: "0.4", Yaw: "-0.06"}, camera.Pose)
	assert.Equal(t, models+"/camera.sdf", camera.File)

	rviz := actionByID(t, model, "rviz2")
	assert.Equal(t, plan.RoleVisualizer, rviz.Role)
	assert.Equal(t, []string{"joint_state_broadcaster_spawner"}, rviz.OnExitOf)
	assert.Equal(t, []string{"-d", share + "/rviz/ur5.rviz"}, rviz.Arguments)
}

func TestLoader_DefaultSceneAssembles(t *testing.T) {
	// --- Arrange ---
	ctx := testutil.Context()
	model, err := NewLoader().Load(ctx, config.LoadOptions{Share: fakeShare})
	require.NoError(t, err)

	// --- Act ---
	p, err := plan.Assemble(ctx, plan.Input{
		SessionID:      "test",
		Arguments:      model.Resolved,
		Infrastructure: model.Actions,
	})

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "env.GZ_SIM_RESOURCE_PATH", p.Actions()[0].ID)
}

func TestLoader_ArgumentOverride(t *testing.T) {
	ctx := testutil.Context()
	opts := config.LoadOptions{Share: fakeShare, Overrides: map[string]string{"ur_type": "ur10e"}}

	model, err := NewLoader().Load(ctx, opts)

	require.NoError(t, err)
	assert.Equal(t, "ur10e", model.Resolved["ur_type"])
	assert.Equal(t, "ur10e", actionByID(t, model, "spawn_ur").Entity)
	assert.Equal(t, "ur10e", actionByID(t, model, "ur_state_publisher").Description.Params["ur_type"])
}

func TestLoader_InvalidOverride(t *testing.T) {
	ctx := testutil.Context()
	opts := config.LoadOptions{Share: fakeShare, Overrides: map[string]string{"ur_type": "ur7"}}

	_, err := NewLoader().Load(ctx, opts)

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to resolve launch arguments")
	assert.ErrorContains(t, err, `invalid value "ur7"`)
}

func TestLoader_ShareDirPrecedence(t *testing.T) {
	ctx := testutil.Context()
	failing := func(pkg string) (string, error) { return "", fmt.Errorf("not installed") }
	src := `
package {
  name  = "scene"
  share = "/from/file"
}
`
	t.Run("package share attribute", func(t *testing.T) {
		model, err := NewLoader().LoadSource(ctx, config.LoadOptions{Share: failing}, "scene.hcl", []byte(src))
		require.NoError(t, err)
		assert.Equal(t, "/from/file", model.Package.ShareDir)
		assert.Equal(t, "/from/file/models", model.Package.ModelsDir)
	})

	t.Run("explicit override", func(t *testing.T) {
		opts := config.LoadOptions{Share: failing, ShareDir: "/from/flag"}
		model, err := NewLoader().LoadSource(ctx, opts, "scene.hcl", []byte(src))
		require.NoError(t, err)
		assert.Equal(t, "/from/flag", model.Package.ShareDir)
	})

	t.Run("resolver failure", func(t *testing.T) {
		_, err := NewLoader().LoadSource(ctx, config.LoadOptions{Share: failing}, "scene.hcl",
			[]byte(`package { name = "scene" }`))
		assert.ErrorContains(t, err, `failed to locate share directory of package "scene": not installed`)
	})
}

func TestLoader_Directory(t *testing.T) {
	// --- Arrange ---
	ctx := testutil.Context()
	dir := t.TempDir()
	writeScene(t, dir, "main.hcl", `
package {
  name  = "scene"
  share = "/srv/scene"
}

argument "world" {
  default = "empty"
}
`)
	writeScene(t, dir, "sim.hcl", `
action "include" "sim" {
  role        = "simulator"
  package     = "ros_gz_sim"
  launch_file = "gz_sim.launch.py"
  launch_arguments = {
    gz_args = format("-r %s/worlds/%s.world", path.share, arg.world)
  }
}

action "spawn" "box" {
  entity     = join("_", ["box", arg.world])
  file       = "${path.models}/box.sdf"
  depends_on = ["sim"]
}
`)

	// --- Act ---
	model, err := NewLoader().Load(ctx, config.LoadOptions{Overrides: map[string]string{"world": "desk"}}, dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Nil(t, model.Blocks)
	require.Len(t, model.Actions, 2)
	sim := actionByID(t, model, "sim")
	assert.Equal(t, "-r /srv/scene/worlds/desk.world", sim.LaunchArguments["gz_args"])
	assert.Equal(t, []string{"world"}, sim.UsesArguments)
	box := actionByID(t, model, "box")
	assert.Equal(t, "box_desk", box.Entity)
	assert.Equal(t, "/srv/scene/models/box.sdf", box.File)
}

func TestLoader_BlocksOverrides(t *testing.T) {
	ctx := testutil.Context()
	src := `
package {
  name  = "scene"
  share = "/srv/scene"
}

blocks {
  types          = ["A", "B", "C"]
  min_count      = 2
  max_count      = 3
  anchor         = [0.0, 0.5]
  max_attempts   = 1000
  models_dir     = "/tmp/models"
  color "blue" { rgba = "0 0 1 1" }
}
`
	model, err := NewLoader().LoadSource(ctx, config.LoadOptions{}, "scene.hcl", []byte(src))

	require.NoError(t, err)
	require.NotNil(t, model.Blocks)
	assert.Equal(t, []catalog.Item{"A", "B", "C"}, model.Blocks.Catalog)
	assert.Equal(t, []palette.Color{{Name: "blue", RGBA: "0 0 1 1"}}, model.Blocks.Palette)
	want := placement.DefaultOptions()
	want.MinCount, want.MaxCount = 2, 3
	want.AnchorX, want.AnchorY = 0.0, 0.5
	want.MaxAttempts = 1000
	assert.Equal(t, want, model.Blocks.Placement)
	assert.Equal(t, "/tmp/models", model.Blocks.ModelsDir)
	assert.Equal(t, "/tmp/models/block.urdf.xacro", model.Blocks.Template)
}

func TestLoader_Errors(t *testing.T) {
	const pkg = "package {\n  name = \"scene\"\n  share = \"/srv/scene\"\n}\n"

	testCases := []struct {
		name    string
		src     string
		wantErr []string
	}{
		{
			name:    "missing package block",
			src:     `argument "x" { default = "1" }`,
			wantErr: []string{"scene must declare a package block"},
		},
		{
			name: "undeclared argument",
			src: pkg + `
action "node" "talker" {
  package    = "demo"
  executable = arg.robot
}
`,
			wantErr: []string{"invalid references in scene", "Undeclared launch argument", `"robot"`},
		},
		{
			name: "unknown function",
			src: pkg + `
action "node" "talker" {
  package    = "demo"
  executable = upper("talker")
}
`,
			wantErr: []string{"Call to unknown function", `"upper"`},
		},
		{
			name: "unsupported kind",
			src: pkg + `
action "service" "talker" {
  package = "demo"
}
`,
			wantErr: []string{`action "talker": unsupported kind "service"`},
		},
		{
			name: "invalid action",
			src: pkg + `
action "spawn" "box" {
  entity = "box"
}
`,
			wantErr: []string{"spawn action requires exactly one of file or description"},
		},
		{
			name: "bad anchor",
			src: pkg + `
blocks {
  anchor = [0.1]
}
`,
			wantErr: []string{"anchor must have exactly 2 elements"},
		},
		{
			name: "duplicate block type",
			src: pkg + `
blocks {
  types = ["A", "A"]
}
`,
			wantErr: []string{`duplicate catalog item "A"`},
		},
		{
			name:    "syntax error",
			src:     `package {`,
			wantErr: []string{"failed to parse HCL file scene.hcl"},
		},
		{
			name:    "unknown top-level block",
			src:     pkg + `world "x" {}`,
			wantErr: []string{"failed to decode HCL file scene.hcl"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadSource(testutil.Context(), config.LoadOptions{}, "scene.hcl", []byte(tc.src))

			require.Error(t, err)
			for _, want := range tc.wantErr {
				assert.ErrorContains(t, err, want)
			}
		})
	}
}

func TestLoader_DuplicateAcrossFiles(t *testing.T) {
	ctx := testutil.Context()
	dir := t.TempDir()
	writeScene(t, dir, "a.hcl", "package {\n  name  = \"a\"\n  share = \"/a\"\n}\n")
	writeScene(t, dir, "b.hcl", "package {\n  name  = \"b\"\n  share = \"/b\"\n}\n")

	_, err := NewLoader().Load(ctx, config.LoadOptions{}, dir)

	assert.ErrorContains(t, err, "duplicate package block")
}

func TestAmentShareResolver(t *testing.T) {
	// --- Arrange ---
	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(second, "share", "ur_description"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(first, "share", "rviz2"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(second, "share", "rviz2"), 0o755))
	t.Setenv("AMENT_PREFIX_PATH", first+string(os.PathListSeparator)+second)

	// --- Act & Assert ---
	dir, err := AmentShareResolver("ur_description")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "share", "ur_description"), dir)

	dir, err = AmentShareResolver("rviz2")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "share", "rviz2"), dir, "first prefix wins")

	_, err = AmentShareResolver("missing_pkg")
	assert.ErrorContains(t, err, `package "missing_pkg" not found in AMENT_PREFIX_PATH`)
}

func TestDefaultScene_ReturnsCopy(t *testing.T) {
	src := DefaultScene()
	require.NotEmpty(t, src)
	src[0] = 'X'
	assert.NotEqual(t, src[0], DefaultScene()[0])
}

func TestLoader_BlocksDefaults(t *testing.T) {
	// --- Arrange ---
	ctx := testutil.Context()
	src := `
package {
  name  = "scene"
  share = "/srv/scene"
}

blocks {}
`

	// --- Act ---
	model, err := NewLoader().LoadSource(ctx, config.LoadOptions{}, "scene.hcl", []byte(src))

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, model.Blocks)
	assert.Equal(t, catalog.DefaultBlocks, model.Blocks.Catalog)
	assert.Equal(t, palette.Default, model.Blocks.Palette)
	assert.Equal(t, placement.DefaultOptions(), model.Blocks.Placement)
}
