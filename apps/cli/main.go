package main

import (
	"log"
	"os"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/auth"
	"github.com/trezcool/masomo-portal/core/policy"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	"github.com/trezcool/masomo-portal/services/recordsapi"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "MASOMO : ", log.LstdFlags), conf)
	logger.Enable(!conf.Debug)

	validate, _ := core.NewValidator()
	client := recordsapi.NewClient(conf.Portal.APIBaseURL, conf.Portal.APITimeout)

	cli := commandLine{
		conf:   conf,
		logger: logger,
		authn:  auth.NewAuthenticator(client, validate, logger),
		policy: policy.New(logger),
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			os.Stderr.WriteString("error: " + err.Error() + "\n")
		}
		os.Exit(1)
	}
}
