package llm

import (
	"context"

	"github.com/Harshitk-cp/fabric/internal/ir"
)

// MockClient is an in-memory Client for tests and offline development.
// Responses are configurable per method and every call is recorded.
type MockClient struct {
	ParseRuleResponse      *ir.Rule
	ParseRuleError         error
	ParseStatementResponse *ir.Statement
	ParseStatementError    error

	ParseRuleCalls      []string
	ParseStatementCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ParseRuleResponse: &ir.Rule{
			RuleType: ir.RuleTypeStandard,
			Condition: &ir.Condition{
				Operator: ir.OperatorLeaf,
				Subject:  "?x",
				Verb:     "is",
				Object:   ir.Tokens("human"),
			},
			Statement: &ir.Statement{
				Subject: "?x",
				Verb:    "is",
				Object:  ir.Tokens("mortal"),
			},
		},
		ParseStatementResponse: &ir.Statement{
			Subject: "socrates",
			Verb:    "is",
			Object:  ir.Tokens("human"),
		},
	}
}

func (c *MockClient) ParseRule(ctx context.Context, text string) (*ir.Rule, error) {
	c.ParseRuleCalls = append(c.ParseRuleCalls, text)
	if c.ParseRuleError != nil {
		return nil, c.ParseRuleError
	}
	return c.ParseRuleResponse, nil
}

func (c *MockClient) ParseStatement(ctx context.Context, text string) (*ir.Statement, error) {
	c.ParseStatementCalls = append(c.ParseStatementCalls, text)
	if c.ParseStatementError != nil {
		return nil, c.ParseStatementError
	}
	return c.ParseStatementResponse, nil
}
