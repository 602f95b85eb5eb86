package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/syllabus/internal/config"
)

func cmdConfig(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "show" {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintf(out, "# %s\n", config.Path())
		_, err = out.Write(data)
		return err
	}

	switch args[0] {
	case "init":
		path := config.Path()
		if len(args) > 1 {
			path = args[1]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("check %s: %w", path, err)
		}
		if err := config.Save(path, config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote default configuration to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s (use show or init)", args[0])
	}
}
