package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	configFlag := &cli.StringFlag{
		Name:  "config",
		Usage: "Path of the TOML configuration file",
	}

	nodeFlag := &cli.Int64Flag{
		Name:  "node",
		Usage: "Id generator node number, unique per running instance",
		Value: 1,
	}

	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "Tonlotto"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{configFlag, nodeFlag},
			Category:    "Api",
			Description: `Used for start service api, it main service included all apis.`,
		},
		{
			Action:      server.startCron,
			Name:        "cron",
			Usage:       "Start the round evaluator",
			Flags:       []cli.Flag{configFlag, nodeFlag},
			Category:    "Worker",
			Description: `Used to start the worker that periodically draws or cancels aging rounds.`,
		},
		{
			Action:      server.startEvaluate,
			Name:        "evaluate",
			Usage:       "Run one evaluation sweep and exit",
			Flags:       []cli.Flag{configFlag, nodeFlag},
			Category:    "Worker",
			Description: `Used to manually trigger a single sweep over the open rounds.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Flags:       []cli.Flag{configFlag},
			Category:    "Database",
			Description: `Used to create or update the database tables.`,
		},
	}

	s.app = app
}
