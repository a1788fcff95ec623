package notifier

import (
	"fmt"

	"github.com/go-lark/lark"
	"github.com/go-lark/lark/card"
	"github.com/sirupsen/logrus"
)

type larkNotifier struct {
	larkBot *lark.Bot
}

func NewLarkNotifier(webHookURL string) Notifier {
	return &larkNotifier{larkBot: lark.NewNotificationBot(webHookURL)}
}

func (ln *larkNotifier) Name() string {
	return LarkNotifierName
}

func (ln *larkNotifier) Notify(report Report) {
	msg := lark.NewMsgBuffer(lark.MsgInteractive)
	outMsg := msg.Card(ln.ComposeCard(report).String()).Build()
	if _, err := ln.larkBot.PostNotificationV2(outMsg); err != nil {
		logrus.Errorf("send report for tx %s to lark is err: %v", report.SafeTxHash, err)
	}
}

func (ln *larkNotifier) ComposeCard(report Report) *card.Block {
	builder := lark.NewCardBuilder()
	elements := []card.Element{
		ln.composeColumnSet(builder,
			larkColumn{"Chain", report.Chain, 1},
			larkColumn{"Safe", report.SafeAddress, 2},
		),
		ln.composeColumnSet(builder,
			larkColumn{"Transaction", report.SafeTxHash, 2},
			larkColumn{"To", report.To, 2},
		),
		builder.Hr(),
	}
	for _, outcome := range report.Outcomes {
		state := "✅ pass"
		if !outcome.OK {
			state = "❌ fail"
		}
		value := state
		if outcome.Reason != "" {
			value = fmt.Sprintf("%s\n%s", state, outcome.Reason)
		}
		elements = append(elements, ln.composeColumnSet(builder,
			larkColumn{"Guard", outcome.GuardName, 1},
			larkColumn{"Verdict", value, 3},
		))
	}

	block := builder.Card(elements...).Title(ln.composeTitle(report))
	if !report.AllOK {
		block = block.Red()
	}
	return block
}

func (ln *larkNotifier) composeTitle(report Report) string {
	if report.AllOK {
		return "Safe transaction passed all guards"
	}
	return "⚠️ Safe transaction flagged by guards ⚠️"
}

type larkColumn struct {
	Name   string
	Value  string
	Weight int
}

func (ln *larkNotifier) composeColumnSet(builder *lark.CardBuilder, columns ...larkColumn) *card.ColumnSetBlock {
	blocks := []*card.ColumnBlock{}
	for _, column := range columns {
		text := builder.Text(fmt.Sprintf("**%s:**\n%s", column.Name, column.Value)).LarkMd()
		blocks = append(blocks, builder.Column(builder.Div().Text(text)).
			VerticalAlign("top").
			Width("weighted").
			Weight(column.Weight))
	}
	return builder.ColumnSet(blocks...).
		FlexMode("bisect").
		HorizontalSpacing("default")
}
