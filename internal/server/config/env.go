package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/you-kimono/checkilists/internal/flagx"
)

const defaultEnvFile = ".env"

// parseEnv loads a dotenv file into the process environment and then reads the
// CHECKLISTS_* variables into config. The file comes from -env-file; without it
// ".env" in the working directory is used when present. Variables already set
// in the environment win over the file. Unset variables keep current values.
func parseEnv(config *Config, args []string) {
	if err := loadDotenv(flagx.EnvFileFlag(args)); err != nil {
		panic(err)
	}

	if err := env.Parse(config); err != nil {
		panic(fmt.Errorf("parse env: %w", err))
	}
}

func loadDotenv(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
