package assistant

import (
	"context"
	"fmt"
	"strings"
)

const StubModel = "smartforge-stub"

// StubResponder answers without calling any model.
type StubResponder struct{}

func NewStubResponder() *StubResponder {
	return &StubResponder{}
}

func (StubResponder) Model() string { return StubModel }

func (s StubResponder) Respond(ctx context.Context, prompt string) (Reply, error) {
	return Reply{Text: s.text(prompt), Model: StubModel}, nil
}

func (StubResponder) text(prompt string) string {
	kind, topics := Classify(prompt)
	if kind == KindContract {
		return fmt.Sprintf(
			"Contract generation is coming soon. SmartForge.ai will turn requests about %s into audited Solidity code. "+
				"Join the early access list to be notified when it launches.",
			strings.Join(topics, ", "),
		)
	}
	return "Hi! I'm SmartForge.ai. I can help you design, generate and deploy smart contracts. " +
		"Ask me about Solidity, ERC20 tokens or NFTs."
}
