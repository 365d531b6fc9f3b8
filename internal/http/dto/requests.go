package dto

type SubscribeRequest struct {
	Email string `json:"email"`
}

type ChatRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateContractRequest struct {
	ContractType    string `json:"contract_type"`
	ContractDetails string `json:"contract_details"`
}

type WalletConnectRequest struct {
	Kind    string `json:"kind"`
	// Replace must be set to swap an already connected wallet.
	Replace bool   `json:"replace"`
}
