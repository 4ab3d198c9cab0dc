package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/shrine/cmd/shrine/commands"
	"github.com/allisson/shrine/internal/config"
)

// pathFlag and passwordFlag are redeclared on every command that touches a
// shrine file: each *cli.Command owns its own Flags slice rather than
// inheriting shared ones.
func pathFlag() cli.Flag {
	return &cli.StringFlag{Name: "path", Aliases: []string{"C"}, Value: ".", Usage: "shrine directory"}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "shrine password"}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create a new shrine",
		Flags: []cli.Flag{
			pathFlag(),
			passwordFlag(),
			&cli.StringFlag{Name: "encryption", Value: "", Usage: "aes or none"},
			&cli.StringFlag{Name: "serialization", Value: "", Usage: "bson, json, or msgpack"},
			&cli.BoolFlag{Name: "git", Usage: "initialize a git repository around the shrine"},
			&cli.BoolFlag{Name: "force", Usage: "overwrite an existing shrine"},
			&cli.BoolFlag{Name: "strong-password", Usage: "reject weak master passwords"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Load()
			logger := newLogger()
			serialization := cmd.String("serialization")
			if serialization == "" {
				serialization = cfg.DefaultSerialization
			}
			encryption := cmd.String("encryption")
			if encryption == "" {
				encryption = cfg.DefaultEncryption
			}
			return commands.RunInit(
				os.Stdout, os.Stdin, logger,
				commands.ShrinePath(cmd.String("path")),
				cmd.String("password"),
				encryption,
				serialization,
				cmd.Bool("git"),
				cmd.Bool("force"),
				cmd.Bool("strong-password"),
			)
		},
	}
}

func setCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "set a secret",
		ArgsUsage: "KEY [VALUE]",
		Flags:     []cli.Flag{pathFlag(), passwordFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			key := args.Get(0)
			value := args.Get(1)
			return commands.RunSet(
				os.Stdout, os.Stdin, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("password"),
				key, value,
			)
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "read a secret",
		ArgsUsage: "KEY",
		Flags: []cli.Flag{
			pathFlag(), passwordFlag(),
			&cli.StringFlag{Name: "encoding", Value: "auto", Usage: "auto, raw, or base64"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key := cmd.Args().Get(0)
			return commands.RunGet(
				os.Stdout, os.Stdin, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("password"),
				key, cmd.String("encoding"),
			)
		},
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "remove a secret",
		ArgsUsage: "KEY",
		Flags:     []cli.Flag{pathFlag(), passwordFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			key := cmd.Args().Get(0)
			return commands.RunRm(
				os.Stdout, os.Stdin, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("password"),
				key,
			)
		},
	}
}

func lsCommand() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "list secrets",
		ArgsUsage: "[PATTERN]",
		Flags:     []cli.Flag{pathFlag(), passwordFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pattern := cmd.Args().Get(0)
			return commands.RunLs(
				os.Stdout, os.Stdin, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("password"),
				pattern,
			)
		},
	}
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "dump secrets as key=value pairs",
		ArgsUsage: "[PATTERN]",
		Flags: []cli.Flag{
			pathFlag(), passwordFlag(),
			&cli.BoolFlag{Name: "private", Usage: "dump the private map instead of the tree"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pattern := cmd.Args().Get(0)
			return commands.RunDump(
				os.Stdout, os.Stdin, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("password"),
				pattern, cmd.Bool("private"),
			)
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a dotenv file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			pathFlag(), passwordFlag(),
			&cli.StringFlag{Name: "prefix", Value: "", Usage: "prefix applied to every imported key"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file := cmd.Args().Get(0)
			return commands.RunImport(
				os.Stdout, os.Stdin, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("password"),
				file, cmd.String("prefix"),
			)
		},
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "re-key a shrine with a new password or encryption",
		Flags: []cli.Flag{
			pathFlag(), passwordFlag(),
			&cli.StringFlag{Name: "new-password", Value: "", Usage: "new password"},
			&cli.StringFlag{Name: "encryption", Value: "aes", Usage: "aes or none"},
			&cli.BoolFlag{Name: "strong-password", Usage: "reject weak master passwords"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return commands.RunConvert(
				os.Stdout, os.Stdin, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("password"),
				cmd.String("new-password"), cmd.String("encryption"),
				cmd.Bool("strong-password"),
			)
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "print shrine metadata",
		Flags: []cli.Flag{
			pathFlag(),
			&cli.StringFlag{Name: "field", Value: "", Usage: "version, uuid, serialization, or encryption"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return commands.RunInfo(
				os.Stdout, newLogger(),
				commands.ShrinePath(cmd.String("path")), cmd.String("field"),
			)
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "manage the shrine's private configuration map",
		Commands: []*cli.Command{
			{
				Name:      "set",
				ArgsUsage: ".KEY [VALUE]",
				Flags:     []cli.Flag{pathFlag(), passwordFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := cmd.Args()
					return commands.RunConfigSet(
						os.Stdout, os.Stdin, newLogger(),
						commands.ShrinePath(cmd.String("path")), cmd.String("password"),
						args.Get(0), args.Get(1),
					)
				},
			},
			{
				Name:      "get",
				ArgsUsage: ".KEY",
				Flags:     []cli.Flag{pathFlag(), passwordFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunConfigGet(
						os.Stdout, os.Stdin, newLogger(),
						commands.ShrinePath(cmd.String("path")), cmd.String("password"),
						cmd.Args().Get(0),
					)
				},
			},
		},
	}
}

func agentCommand() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "manage the password cache daemon",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "metrics", Usage: "expose GET /metrics"}},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					execPath, err := os.Executable()
					if err != nil {
						return err
					}
					return commands.RunAgentStart(os.Stdout, newLogger(), execPath, cfg.XDGRuntimeDir, cmd.Bool("metrics"))
				},
			},
			{
				Name: "stop",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					return commands.RunAgentStop(os.Stdout, newLogger(), cfg.XDGRuntimeDir)
				},
			},
			{
				Name: "status",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					return commands.RunAgentStatus(ctx, os.Stdout, newLogger(), cfg.XDGRuntimeDir)
				},
			},
			{
				Name: "clear-passwords",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					return commands.RunAgentClearPasswords(ctx, os.Stdout, newLogger(), cfg.XDGRuntimeDir)
				},
			},
		},
	}
}
