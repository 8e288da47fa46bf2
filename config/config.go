package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration makes time durations readable from TOML as strings like "30m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Configs struct {
	Env      string
	LogLevel int

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Round     RoundConfigs
	Cron      CronConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
}

// RoundConfigs holds every rule parameter of the round lifecycle. The values
// are fixed at startup; changing them requires a restart.
type RoundConfigs struct {
	TicketPrice     float64
	MaxParticipants int
	MinParticipants int

	// DrawAfter is the round age at which a round with enough participants
	// becomes eligible for a timed draw. CancelAfter must be strictly
	// greater; under-filled rounds older than it are cancelled.
	DrawAfter   Duration
	CancelAfter Duration

	ReservePercent  float64
	OperatorPercent float64
	CreatorPercent  float64

	// DrawingGracePeriod is how long a round may stay in drawing before the
	// sweep flags it as a crashed settlement and retries it.
	DrawingGracePeriod Duration
}

type CronConfigs struct {
	SweepInterval Duration
	AutoCreate    bool
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: 1,
		Database: DatabaseConfigs{
			Host:     os.Getenv("MYSQL_HOST"),
			Port:     os.Getenv("MYSQL_PORT"),
			Database: os.Getenv("MYSQL_DATABASE"),
			User:     os.Getenv("MYSQL_USER"),
			Password: os.Getenv("MYSQL_PASSWORD"),
		},
		ApiServer: ServerConfigs{
			Host: os.Getenv("HOST"),
			Port: os.Getenv("PORT"),
		},
		Round: RoundConfigs{
			TicketPrice:        1.0,
			MaxParticipants:    10,
			MinParticipants:    2,
			DrawAfter:          Duration{time.Hour},
			CancelAfter:        Duration{2 * time.Hour},
			ReservePercent:     0.10,
			OperatorPercent:    0.10,
			CreatorPercent:     0.05,
			DrawingGracePeriod: Duration{5 * time.Minute},
		},
		Cron: CronConfigs{
			SweepInterval: Duration{30 * time.Second},
			AutoCreate:    true,
		},
	}
}

// Load returns the default configs, overridden by the TOML file at path if
// one is given.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	if cfg.Round.CancelAfter.Duration <= cfg.Round.DrawAfter.Duration {
		return Configs{}, fmt.Errorf("cancel-after (%v) must be greater than draw-after (%v)",
			cfg.Round.CancelAfter.Duration, cfg.Round.DrawAfter.Duration)
	}

	return cfg, nil
}
