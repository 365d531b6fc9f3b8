// Package assistant produces chat replies for the landing page widget.
//
// The default responder is a canned stub; a Gemini backed responder can be
// enabled through configuration. Callers only rely on "prompt in, text out".
package assistant

import (
	"context"
	"fmt"
	"strings"
)

type Responder interface {
	Respond(ctx context.Context, prompt string) (Reply, error)
	Model() string
}

// Reply is a responder answer. Model names the responder that produced Text,
// which differs from Responder.Model when a fallback answered.
type Reply struct {
	Text  string
	Model string
}

type ReplyKind string

const (
	KindContract ReplyKind = "contract"
	KindGeneral  ReplyKind = "general"
)

var contractKeywords = []string{
	"smart contract", "non-fungible", "contract", "solidity", "erc20", "erc721", "erc1155",
	"token", "nft", "fungible", "generate", "create", "write",
}

// Classify reports whether the prompt asks for a contract and which keywords
// matched, in keyword order.
func Classify(prompt string) (ReplyKind, []string) {
	lower := strings.ToLower(prompt)
	var topics []string
	for _, kw := range contractKeywords {
		if strings.Contains(lower, kw) {
			topics = append(topics, kw)
		}
	}
	if len(topics) == 0 {
		return KindGeneral, nil
	}
	return KindContract, topics
}

// Prompt wraps the user prompt in the instructions matching its kind.
func Prompt(kind ReplyKind, prompt string) string {
	if kind == KindContract {
		return fmt.Sprintf(contractPrompt, prompt)
	}
	return fmt.Sprintf(generalPrompt, prompt)
}

const contractPrompt = `Generate a complete Solidity smart contract based on the following requirements:
%s

Requirements:
1. Use Solidity ^0.8.0
2. Include NatSpec comments
3. Implement the necessary security checks and input validation
4. Emit events for important state changes
5. Follow Solidity best practices

Reply in markdown with the code in a solidity fenced block.`

const generalPrompt = `You are SmartForge.ai, an assistant specialising in blockchain and smart contract development.
Answer the following question in a conversational and helpful way:

%s

If the question is about smart contracts or blockchain development, give technical but accessible explanations.
If it is a greeting or a general question, answer naturally without code formatting.`
