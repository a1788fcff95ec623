package cmd

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/exvulsec/safeguard/config"
	"github.com/exvulsec/safeguard/dispatch"
	"github.com/exvulsec/safeguard/notifier"
	"github.com/exvulsec/safeguard/safe"
)

var guardCmd = &cobra.Command{
	Use:   "guard",
	Short: "watch the queued safe transactions and guard them",
	Run: func(cmd *cobra.Command, args []string) {
		setup(cmd)

		safeClient := safe.NewClient()
		signer, err := safe.NewSigner(safeClient)
		if err != nil {
			logrus.Panicf("create signer is err %v", err)
		}
		pipeline, err := composePipeline(safeClient, signer)
		if err != nil {
			logrus.Panicf("compose pipeline is err %v", err)
		}

		signFlag, _ := cmd.Flags().GetBool("sign")
		rejectFlag, _ := cmd.Flags().GetBool("reject")
		notifyFlag, _ := cmd.Flags().GetBool("notify")
		workers, _ := cmd.Flags().GetInt("workers")
		interval, _ := cmd.Flags().GetInt("interval")

		dispatcher := dispatch.NewDispatcher(signer, composeNotifiers(), signFlag, rejectFlag, notifyFlag)
		executor := dispatch.NewExecutor(pipeline, dispatcher, safeClient, workers, time.Duration(interval)*time.Second)
		executor.Run(context.Background())
	},
}

func composeNotifiers() []notifier.Notifier {
	notifiers := []notifier.Notifier{}
	if webhook := config.Conf.Notifier.LarkWebHook; webhook != "" {
		notifiers = append(notifiers, notifier.NewLarkNotifier(webhook))
	}
	if webhook := config.Conf.Notifier.SlackWebHook; webhook != "" {
		notifiers = append(notifiers, notifier.NewSlackNotifier(webhook))
	}
	return notifiers
}

func guardCmdInit() {
	guardCmd.Flags().String("config", "", "set config file path")
	guardCmd.Flags().Bool("sign", false, "sign passing transactions, execute when the threshold is met")
	guardCmd.Flags().Bool("reject", false, "reject flagged transactions with a replacement transaction")
	guardCmd.Flags().Bool("notify", false, "post a guard report for every conclusion")
	guardCmd.Flags().Int("workers", 2, "pipeline workers, bounds the oracle pressure")
	guardCmd.Flags().Int("interval", 60, "queue poll interval in seconds")
}

func init() {
	guardCmdInit()
}
