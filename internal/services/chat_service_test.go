package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smartforge/landing/internal/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoResponder struct {
	err     error
	answer  string
	prompts []string
}

func (e *echoResponder) Model() string { return "echo" }

func (e *echoResponder) Respond(ctx context.Context, prompt string) (assistant.Reply, error) {
	e.prompts = append(e.prompts, prompt)
	if e.err != nil {
		return assistant.Reply{}, e.err
	}
	if e.answer != "" {
		return assistant.Reply{Text: e.answer, Model: "echo"}, nil
	}
	return assistant.Reply{Text: "echo: " + prompt, Model: "echo"}, nil
}

func TestChatReply(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		prompt string
		kind   assistant.ReplyKind
		topics []string
	}{
		{"greeting", "hi", assistant.KindGeneral, []string{}},
		{"contract", "Write an ERC20 token", assistant.KindContract, []string{"erc20", "token", "write"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewChatService(assistant.NewStubResponder(), zap.NewNop())
			svc.now = func() time.Time { return fixed }

			reply, err := svc.Reply(context.Background(), tt.prompt)
			require.NoError(t, err)

			assert.NotEmpty(t, reply.Message)
			assert.Equal(t, tt.kind, reply.Metadata.Kind)
			assert.Equal(t, tt.topics, reply.Metadata.Topics)
			assert.Equal(t, assistant.StubModel, reply.Metadata.Model)
			assert.Equal(t, APIVersion, reply.Metadata.Version)
			assert.Equal(t, fixed, reply.Metadata.GeneratedAt)
		})
	}
}

func TestChatReply_ReportsAnsweringModel(t *testing.T) {
	primary := &echoResponder{err: errors.New("429 RESOURCE_EXHAUSTED")}
	responder := assistant.NewFallbackResponder(primary, assistant.NewStubResponder(), zap.NewNop())
	svc := NewChatService(responder, zap.NewNop())

	reply, err := svc.Reply(context.Background(), "hi")
	require.NoError(t, err)

	assert.Len(t, primary.prompts, 1)
	assert.Contains(t, reply.Message, "SmartForge.ai")
	assert.Equal(t, assistant.StubModel, reply.Metadata.Model)
}

func TestChatReply_Errors(t *testing.T) {
	svc := NewChatService(&echoResponder{err: errors.New("quota exceeded")}, zap.NewNop())

	_, err := svc.Reply(context.Background(), "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "prompt", verr.Field)

	_, err = svc.Reply(context.Background(), "hello")
	require.Error(t, err)
	assert.False(t, errors.As(err, &verr))
}

const badgeAnswer = `Here is your contract.

` + "```solidity" + `
// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

contract Badges {
    event Minted(address indexed to, uint256 id);

    function mint(address to, uint256 id) external {
        require(to != address(0), "zero address");
        emit Minted(to, id);
    }
}
` + "```" + `

// Test file
describe("Badges", () => {});

// Deployment script
async function main() {}

Security Considerations:
- Restrict mint to the owner

Gas Optimizations:
- Use custom errors`

func TestGenerateContract(t *testing.T) {
	responder := &echoResponder{answer: badgeAnswer}
	svc := NewChatService(responder, zap.NewNop())

	contract, err := svc.GenerateContract(context.Background(), "ERC721", "A collection of 100 badges")
	require.NoError(t, err)

	require.Len(t, responder.prompts, 1)
	assert.Contains(t, responder.prompts[0], "Contract Type: ERC721")
	assert.Contains(t, responder.prompts[0], "Contract Details: A collection of 100 badges")

	assert.True(t, strings.HasPrefix(contract.ContractCode, "// SPDX-License-Identifier: MIT"))
	assert.Contains(t, contract.ContractCode, "emit Minted(to, id);")
	assert.Equal(t, "// Test file\ndescribe(\"Badges\", () => {});", contract.TestFile)
	assert.Equal(t, "// Deployment script\nasync function main() {}", contract.DeploymentScript)
	assert.Equal(t, []string{"Restrict mint to the owner"}, contract.SecurityConsiderations)
	assert.Equal(t, []string{"Use custom errors"}, contract.GasOptimizations)
	assert.True(t, contract.Validation.IsValid)
	assert.Equal(t, "echo", contract.Model)
}

func TestGenerateContract_UnstructuredAnswer(t *testing.T) {
	svc := NewChatService(assistant.NewStubResponder(), zap.NewNop())

	contract, err := svc.GenerateContract(context.Background(), "ERC20", "Capped supply")
	require.NoError(t, err)

	assert.Contains(t, contract.ContractCode, "coming soon")
	assert.Empty(t, contract.TestFile)
	assert.Equal(t, []string{}, contract.SecurityConsiderations)
	assert.Equal(t, []string{}, contract.GasOptimizations)
	assert.False(t, contract.Validation.IsValid)
	assert.Contains(t, contract.Validation.Warnings, "Missing Solidity pragma directive")
	assert.Equal(t, assistant.StubModel, contract.Model)
}

func TestGenerateContract_Validation(t *testing.T) {
	svc := NewChatService(&echoResponder{}, zap.NewNop())

	tests := []struct {
		name         string
		contractType string
		details      string
		field        string
	}{
		{"missing type", "", "details", "contract_type"},
		{"missing details", "ERC20", " ", "contract_details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GenerateContract(context.Background(), tt.contractType, tt.details)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, RuleRequired, verr.Rule)
		})
	}
}
