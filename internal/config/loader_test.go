package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/tellsight/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail validation without a dataset", func() {
				// human_dataset_path is required and has no default.
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TELLSIGHT_HUMAN_DATASET_PATH", "/data/hands.json")
			_ = os.Setenv("TELLSIGHT_ADDR", ":8080")
			_ = os.Setenv("TELLSIGHT_BATCH_SIZE", "5")
			_ = os.Setenv("TELLSIGHT_CHUNK_WIDTH", "6")
			_ = os.Setenv("TELLSIGHT_SEED", "99")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.HumanDatasetPath, convey.ShouldEqual, "/data/hands.json")
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BatchSize, convey.ShouldEqual, 5)
				convey.So(cfg.ChunkWidth, convey.ShouldEqual, 6)
				convey.So(cfg.Seed, convey.ShouldEqual, 99)
				// Untouched keys keep their defaults.
				convey.So(cfg.ChunksPerCycle, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			yamlContent := `
# admin surface
addr: ":9090"
human_dataset_path: /data/hands.json
poll_interval_seconds: 60
chunks_per_cycle: 4
workers:
  - uid: 7
    url: http://miner-7.internal:8000
  - uid: 12
    url: http://miner-12.internal:8000
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TELLSIGHT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should be parsed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.PollIntervalSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.ChunksPerCycle, convey.ShouldEqual, 4)
				convey.So(cfg.Workers, convey.ShouldHaveLength, 2)
				convey.So(cfg.Workers[0].UID, convey.ShouldEqual, 7)
				convey.So(cfg.Workers[1].URL, convey.ShouldEqual, "http://miner-12.internal:8000")
			})

			convey.Convey("And env should still win over the file", func() {
				_ = os.Setenv("TELLSIGHT_POLL_INTERVAL_SECONDS", "30")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PollIntervalSeconds, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When the config file has an invalid worker URL", func() {
			yamlContent := `
human_dataset_path: /data/hands.json
workers:
  - uid: 7
    url: not-a-url
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TELLSIGHT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should reject it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the cycle timeout undercuts the request timeout", func() {
			_ = os.Setenv("TELLSIGHT_HUMAN_DATASET_PATH", "/data/hands.json")
			_ = os.Setenv("TELLSIGHT_CYCLE_TIMEOUT_SECONDS", "5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "cycle_timeout_seconds")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When TELLSIGHT_CONFIG points at a missing file", func() {
			_ = os.Setenv("TELLSIGHT_CONFIG", "/nonexistent/tellsight.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail with a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TELLSIGHT_CONFIG",
		"TELLSIGHT_ADDR",
		"TELLSIGHT_HUMAN_DATASET_PATH",
		"TELLSIGHT_BATCH_SIZE",
		"TELLSIGHT_CHUNK_WIDTH",
		"TELLSIGHT_CHUNKS_PER_CYCLE",
		"TELLSIGHT_POLL_INTERVAL_SECONDS",
		"TELLSIGHT_CYCLE_TIMEOUT_SECONDS",
		"TELLSIGHT_SEED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "tellsight-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
