package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smartforge/landing/internal/assistant"
	"go.uber.org/zap"
)

// APIVersion is reported in chat metadata and the service banner.
const APIVersion = "1.0.0"

type ChatMetadata struct {
	Kind        assistant.ReplyKind `json:"kind"`
	Topics      []string            `json:"topics"`
	Model       string              `json:"model"`
	Version     string              `json:"version"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type ChatReply struct {
	Message  string       `json:"message"`
	Metadata ChatMetadata `json:"metadata"`
}

type GeneratedContract struct {
	ContractCode           string                       `json:"contract_code"`
	TestFile               string                       `json:"test_file"`
	DeploymentScript       string                       `json:"deployment_script"`
	SecurityConsiderations []string                     `json:"security_considerations"`
	GasOptimizations       []string                     `json:"gas_optimizations"`
	Validation             assistant.ContractValidation `json:"validation"`
	Model                  string                       `json:"model"`
}

type ChatService struct {
	responder assistant.Responder
	log       *zap.Logger
	now       func() time.Time
}

func NewChatService(responder assistant.Responder, log *zap.Logger) *ChatService {
	return &ChatService{responder: responder, log: log, now: time.Now}
}

func (s *ChatService) Reply(ctx context.Context, prompt string) (*ChatReply, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &ValidationError{Field: "prompt", Rule: RuleRequired}
	}

	kind, topics := assistant.Classify(prompt)
	s.log.Info("chat request", zap.String("kind", string(kind)), zap.Strings("topics", topics))

	reply, err := s.responder.Respond(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat respond: %w", err)
	}
	if topics == nil {
		topics = []string{}
	}

	return &ChatReply{
		Message: reply.Text,
		Metadata: ChatMetadata{
			Kind:        kind,
			Topics:      topics,
			Model:       reply.Model,
			Version:     APIVersion,
			GeneratedAt: s.now().UTC(),
		},
	}, nil
}

// GenerateContract asks the responder for a contract, splits the answer into
// sections and runs the static checks on the contract code.
func (s *ChatService) GenerateContract(ctx context.Context, contractType, details string) (*GeneratedContract, error) {
	contractType = strings.TrimSpace(contractType)
	details = strings.TrimSpace(details)
	if contractType == "" {
		return nil, &ValidationError{Field: "contract_type", Rule: RuleRequired}
	}
	if details == "" {
		return nil, &ValidationError{Field: "contract_details", Rule: RuleRequired}
	}

	s.log.Info("contract generation request", zap.String("contract_type", contractType))

	reply, err := s.responder.Respond(ctx, assistant.ContractRequest(contractType, details))
	if err != nil {
		return nil, fmt.Errorf("generate contract: %w", err)
	}

	sections := assistant.ParseContractResponse(reply.Text)
	validation := assistant.ValidateContract(sections.ContractCode)
	if !validation.IsValid {
		s.log.Info("generated contract has warnings",
			zap.String("model", reply.Model),
			zap.Strings("warnings", validation.Warnings),
		)
	}

	return &GeneratedContract{
		ContractCode:           sections.ContractCode,
		TestFile:               sections.TestFile,
		DeploymentScript:       sections.DeploymentScript,
		SecurityConsiderations: nonNil(sections.SecurityConsiderations),
		GasOptimizations:       nonNil(sections.GasOptimizations),
		Validation:             validation,
		Model:                  reply.Model,
	}, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
