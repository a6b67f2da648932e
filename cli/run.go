package cli

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"
)

// Run parses args and executes the selected subcommand.
func Run(args []string) error {
	app := kingpin.New("otpvault", "Offline TOTP client with an encrypted database.")
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)

	configFile := app.Flag("config", "configuration file").String()
	database := app.Flag("database", "database file").Short('i').String()
	verbose := app.Flag("verbose", "debug logging").Short('v').Bool()

	appCreate := app.Command("create", "create a new empty database")

	appAdd := app.Command("add", "add a new entry")
	appAddBase32 := appAdd.Flag("base32", "treat the secret key as base32").Short('e').Bool()
	appAddURI := appAdd.Flag("uri", "import an otpauth://totp/ URI").String()

	appRemove := app.Command("remove", "remove an entry")
	appRemoveName := appRemove.Arg("name", "entry name").Required().String()

	appShow := app.Command("show", "print the current code of an entry")
	appShowName := appShow.Arg("name", "entry name").Required().String()
	appShowCopy := appShow.Flag("copy", "copy the code to the clipboard").Short('c').Bool()

	appList := app.Command("list", "list entry names")
	appNewpass := app.Command("newpass", "change the database password")
	appWatch := app.Command("watch", "live view of all codes")

	cmd, err := app.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		return err
	}
	if *database != "" {
		cfg.Database = *database
	}

	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(cfg.LogLevel)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.WithField("database", cfg.Database).Debug("configuration loaded")

	a := NewApp(cfg, NewTermPrompter(os.Stdin, os.Stderr), os.Stdout)

	switch cmd {
	case appCreate.FullCommand():
		return a.Create()
	case appAdd.FullCommand():
		return a.Add(*appAddBase32, *appAddURI)
	case appRemove.FullCommand():
		return a.Remove(*appRemoveName)
	case appShow.FullCommand():
		return a.Show(*appShowName, *appShowCopy)
	case appList.FullCommand():
		return a.List()
	case appNewpass.FullCommand():
		return a.NewPass()
	case appWatch.FullCommand():
		return a.Watch()
	}
	return nil
}
