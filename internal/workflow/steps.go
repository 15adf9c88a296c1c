package workflow

import (
	"context"
	"fmt"

	"investpath/internal/providers"
)

// baseStep carries the descriptive half of the StepProcessor contract
// so each processor only implements validation and execution.
type baseStep struct {
	id          StepID
	name        string
	optional    bool
	description string
	schema      []InputField
}

func (b baseStep) ID() StepID                { return b.id }
func (b baseStep) Name() string              { return b.name }
func (b baseStep) Optional() bool            { return b.optional }
func (b baseStep) Description() string       { return b.description }
func (b baseStep) InputSchema() []InputField { return b.schema }

// NewRegistryWithSteps builds the registry with all twelve processors
// in workflow order.
func NewRegistryWithSteps() (*Registry, error) {
	registry := NewRegistry()
	steps := []StepProcessor{
		newProfileStep(),
		newMacroStep(),
		newSectorsStep(),
		newScreeningStep(),
		newFundamentalsStep(),
		newValuationStep(),
		newMoatStep(),
		newConsensusStep(),
		newTechnicalsStep(),
		newPositionStep(),
		newExecutionStep(),
		newMonitoringStep(),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// fetchNeed resolves one data need through the catalog, folding chain
// warnings into the result under construction.
func fetchNeed(ctx context.Context, env *Env, result *StepResult, need string, req providers.Request) (*providers.Response, error) {
	chainResult, err := env.Catalog.Fetch(ctx, need, req)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, chainResult.Warnings...)
	return chainResult.Response, nil
}

// resolveSymbol takes the symbol input, falling back to the ticker the
// fundamentals step already researched.
func resolveSymbol(ctx context.Context, env *Env, inputs Inputs) (string, error) {
	if symbol, ok := inputs.String("symbol"); ok && symbol != "" {
		return symbol, nil
	}
	data, err := env.PriorData(ctx, StepFundamentals)
	if err != nil {
		return "", fmt.Errorf("symbol not provided and not inferable: %w", err)
	}
	if data.Fundamentals == nil || data.Fundamentals.Symbol == "" {
		return "", fmt.Errorf("symbol not provided and fundamentals carry no ticker")
	}
	return data.Fundamentals.Symbol, nil
}

func symbolRequest(endpoint providers.Endpoint, symbol string) providers.Request {
	return providers.Request{
		Endpoint: endpoint,
		Params:   map[string]string{"symbol": symbol},
	}
}
