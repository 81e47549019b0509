package main

import (
	"os"
	"path/filepath"

	"github.com/aligator/ecsfs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var (
	// hostFs holds the images and the files added to them.
	hostFs afero.Fs = afero.NewOsFs()

	imagePath string

	// Config is the global tool configuration
	Config = GlobalConfig{}

	defaultLogFormatter = &log.TextFormatter{}
)

// GlobalConfig is the global tool configuration
type GlobalConfig struct {
	// Image is used when --image is not given.
	Image string `yaml:"image"`
	// Verbose is used when --verbose is not given.
	Verbose *int `yaml:"verbose"`
	// MaxOpenFiles is the descriptor table capacity of mounted volumes.
	MaxOpenFiles int `yaml:"max-open-files"`
}

func defaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "ecsfs", "config.yml")
}

// readConfig loads the config at path. A missing file is only an error if
// the path was given explicitly.
func readConfig(fs afero.Fs, path string, explicit bool) (GlobalConfig, error) {
	var cfg GlobalConfig

	cfgBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "failed to read %q", path)
	}
	if err := yaml.Unmarshal(cfgBytes, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse %q", path)
	}
	return cfg, nil
}

// infoFormatter prints Info() log events as plain messages
type infoFormatter struct {
}

func (f *infoFormatter) Format(entry *log.Entry) ([]byte, error) {
	if entry.Level == log.InfoLevel {
		return append([]byte(entry.Message), '\n'), nil
	}
	return defaultLogFormatter.Format(entry)
}

// setupLogging once the flags have been parsed, setup the logging
func setupLogging(quiet bool, verbose int, verboseSet bool) error {
	log.SetFormatter(new(infoFormatter))
	log.SetLevel(log.InfoLevel)
	if quiet && verboseSet && verbose > 0 {
		return errors.New("can't set quiet and verbose flag at the same time")
	}
	switch {
	case quiet, verbose == 0:
		log.SetLevel(log.ErrorLevel)
	case verbose == 1:
		if verboseSet {
			log.SetFormatter(defaultLogFormatter)
		}
		log.SetLevel(log.InfoLevel)
	case verbose == 2:
		log.SetFormatter(defaultLogFormatter)
		log.SetLevel(log.DebugLevel)
	case verbose == 3:
		log.SetFormatter(defaultLogFormatter)
		log.SetLevel(log.TraceLevel)
	default:
		return errors.New("verbose flag can only be set to 0, 1, 2 or 3")
	}
	return nil
}

// mountImage mounts the image selected by --image or the config file.
func mountImage() (*ecsfs.Volume, error) {
	if imagePath == "" {
		return nil, errors.New("no image given, use --image or set image in the config file")
	}

	vol, err := ecsfs.Mount(hostFs, imagePath,
		ecsfs.WithLogger(log.WithField("image", imagePath)),
		ecsfs.WithMaxOpenFiles(Config.MaxOpenFiles),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot mount %s", imagePath)
	}
	return vol, nil
}

// withVolume mounts the image, runs fn and unmounts it again.
func withVolume(fn func(vol *ecsfs.Volume) error) error {
	vol, err := mountImage()
	if err != nil {
		return err
	}

	err = fn(vol)
	if unmountErr := vol.Unmount(); unmountErr != nil && err == nil {
		err = errors.Wrapf(unmountErr, "cannot unmount %s", imagePath)
	}
	return err
}

func newCmd() *cobra.Command {
	var (
		flagQuiet       bool
		flagVerbose     int
		flagVerboseName = "verbose"
		flagImageName   = "image"
		configPath      string
	)
	cmd := &cobra.Command{
		Use:               "ecsfs",
		Short:             "inspect and modify ECS150FS volume images",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			explicit := cmd.Flag("config").Changed
			cfg, err := readConfig(hostFs, configPath, explicit)
			if err != nil {
				return err
			}
			Config = cfg

			if !cmd.Flag(flagImageName).Changed && Config.Image != "" {
				imagePath = Config.Image
			}
			verboseSet := cmd.Flag(flagVerboseName).Changed
			if !verboseSet && Config.Verbose != nil {
				flagVerbose = *Config.Verbose
				verboseSet = true
			}

			return setupLogging(flagQuiet, flagVerbose, verboseSet)
		},
	}

	cmd.AddCommand(addCmd())
	cmd.AddCommand(catCmd())
	cmd.AddCommand(formatCmd())
	cmd.AddCommand(infoCmd())
	cmd.AddCommand(lsCmd())
	cmd.AddCommand(rmCmd())
	cmd.AddCommand(statCmd())

	cmd.PersistentFlags().StringVar(&imagePath, flagImageName, "", "Volume image to operate on")
	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Config file")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet execution")
	cmd.PersistentFlags().IntVarP(&flagVerbose, flagVerboseName, "v", 1, "Verbosity of logging: 0 = quiet, 1 = info, 2 = debug, 3 = trace. Default is info. Setting it explicitly will create structured logging lines.")

	return cmd
}
