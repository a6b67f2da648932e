package main

import (
	"os"

	"github.com/fahmaliyi/otpvault/cli"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		logrus.Fatal(err)
	}
}
