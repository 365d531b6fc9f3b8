package assistant

import (
	"fmt"
	"regexp"
	"strings"
)

// ContractSections is a generated contract answer split into its parts.
type ContractSections struct {
	ContractCode           string
	TestFile               string
	DeploymentScript       string
	SecurityConsiderations []string
	GasOptimizations       []string
}

type ContractValidation struct {
	IsValid     bool     `json:"is_valid"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

type section int

const (
	sectionNone section = iota
	sectionCode
	sectionTest
	sectionDeploy
	sectionSecurity
	sectionGas
)

// ContractRequest builds the prompt asking for a contract with every section
// ParseContractResponse understands.
func ContractRequest(contractType, details string) string {
	return fmt.Sprintf(`Generate a Solidity smart contract.
Contract Type: %s
Contract Details: %s

Please provide, separated by blank lines:
1. The complete contract code, starting with "// SPDX-License-Identifier: MIT"
2. A test file, starting with the line "// Test file"
3. A deployment script, starting with the line "// Deployment script"
4. "Security Considerations:" followed by one item per line
5. "Gas Optimizations:" followed by one item per line`, contractType, details)
}

// ParseContractResponse splits a model answer into sections. Sections are
// blocks separated by a blank line; a block opening with a section header
// starts that section and headerless blocks continue the current one. Code
// fences are dropped. When no block opens with an SPDX header, the text before
// the first header is taken as the contract code.
func ParseContractResponse(text string) ContractSections {
	var (
		out      ContractSections
		current  = sectionNone
		preamble []string
	)

	for _, block := range strings.Split(stripFences(text), "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}

		if next := sectionOf(block); next != sectionNone {
			current = next
			switch current {
			case sectionCode:
				out.ContractCode = block
			case sectionTest:
				out.TestFile = block
			case sectionDeploy:
				out.DeploymentScript = block
			case sectionSecurity:
				out.SecurityConsiderations = append(out.SecurityConsiderations, listItems(afterFirstLine(block))...)
			case sectionGas:
				out.GasOptimizations = append(out.GasOptimizations, listItems(afterFirstLine(block))...)
			}
			continue
		}

		switch current {
		case sectionNone:
			preamble = append(preamble, block)
		case sectionCode:
			out.ContractCode += "\n\n" + block
		case sectionTest:
			out.TestFile += "\n\n" + block
		case sectionDeploy:
			out.DeploymentScript += "\n\n" + block
		case sectionSecurity:
			out.SecurityConsiderations = append(out.SecurityConsiderations, listItems(block)...)
		case sectionGas:
			out.GasOptimizations = append(out.GasOptimizations, listItems(block)...)
		}
	}

	if out.ContractCode == "" {
		out.ContractCode = strings.Join(preamble, "\n\n")
	}
	return out
}

func sectionOf(block string) section {
	first := strings.TrimSpace(block)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	lower := strings.ToLower(first)

	switch {
	case strings.HasPrefix(lower, "// spdx-license-identifier:"):
		return sectionCode
	case strings.HasPrefix(lower, "// test file"):
		return sectionTest
	case strings.HasPrefix(lower, "// deployment script"):
		return sectionDeploy
	}

	heading := strings.Trim(lower, "#* \t")
	switch {
	case strings.HasPrefix(heading, "security considerations"):
		return sectionSecurity
	case strings.HasPrefix(heading, "gas optimizations"):
		return sectionGas
	}
	return sectionNone
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func afterFirstLine(block string) string {
	if i := strings.IndexByte(block, '\n'); i >= 0 {
		return block[i+1:]
	}
	return ""
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

func listItems(block string) []string {
	var items []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

var (
	contractDecl = regexp.MustCompile(`\b(?:abstract\s+)?contract\s+[A-Za-z_$][\w$]*`)
	eventDecl    = regexp.MustCompile(`\bevent\s+[A-Za-z_$][\w$]*\s*\(`)
)

// ValidateContract runs static checks on generated Solidity code. Failed
// checks produce warnings with a matching suggestion; they never reject the
// code.
func ValidateContract(code string) ContractValidation {
	res := ContractValidation{Warnings: []string{}, Suggestions: []string{}}
	check := func(ok bool, warning, suggestion string) {
		if !ok {
			res.Warnings = append(res.Warnings, warning)
			res.Suggestions = append(res.Suggestions, suggestion)
		}
	}

	check(strings.Contains(code, "pragma solidity"),
		"Missing Solidity pragma directive",
		"Add 'pragma solidity ^0.8.0;' at the top of the file")
	check(strings.Contains(code, "// SPDX-License-Identifier:"),
		"Missing SPDX license identifier",
		"Add '// SPDX-License-Identifier: MIT' at the top of the file")
	check(contractDecl.MatchString(code),
		"No contract declaration found",
		"Ensure the code contains at least one contract declaration")
	check(strings.Contains(code, "require("),
		"No require statements found",
		"Add input validation using require statements")
	check(eventDecl.MatchString(code),
		"No events defined",
		"Add events for important state changes")

	res.IsValid = len(res.Warnings) == 0
	return res
}
