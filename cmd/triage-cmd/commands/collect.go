// collect.go — The collect command: exhaustively page through an API.
package commands

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dev-console/triage/cmd/triage-cmd/config"
	"github.com/dev-console/triage/cmd/triage-cmd/output"
	"github.com/dev-console/triage/internal/pagination"
)

// APIArgs describes a paginated JSON endpoint.
type APIArgs struct {
	URL        string
	ItemsField string
	KeyField   string
	PageParam  string
	SizeParam  string
}

// CollectArgs parses CLI args for the collect command.
func CollectArgs(args []string) (APIArgs, error) {
	api, remaining := parseAPIArgs(args)
	if api.URL == "" {
		return api, usageErrorf("collect requires --api-url")
	}
	return api, rejectLeftovers(remaining)
}

func parseAPIArgs(args []string) (APIArgs, []string) {
	api := APIArgs{ItemsField: "items", KeyField: "id", PageParam: "page", SizeParam: "size"}
	remaining := args
	var v string

	api.URL, remaining = parseFlag(remaining, "--api-url")
	if v, remaining = parseFlag(remaining, "--items-field"); v != "" {
		api.ItemsField = v
	}
	if v, remaining = parseFlag(remaining, "--key-field"); v != "" {
		api.KeyField = v
	}
	if v, remaining = parseFlag(remaining, "--page-param"); v != "" {
		api.PageParam = v
	}
	if v, remaining = parseFlag(remaining, "--size-param"); v != "" {
		api.SizeParam = v
	}
	return api, remaining
}

func (a APIArgs) fetcher() *pagination.HTTPFetcher {
	f := pagination.NewHTTPFetcher(a.URL)
	f.ItemsField = a.ItemsField
	f.PageParam = a.PageParam
	f.SizeParam = a.SizeParam
	return f
}

// collectKeys pages through the API and returns the key of every record.
func collectKeys(ctx context.Context, cfg config.Config, api APIArgs, log zerolog.Logger) ([]string, *pagination.Result[pagination.Record], error) {
	key := pagination.RecordKey(api.KeyField)
	c := pagination.NewCollector(api.fetcher().Fetch, key, collectorOptions(cfg, log)...)
	res, err := c.Collect(ctx)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, len(res.Items))
	for i, r := range res.Items {
		keys[i] = key(r)
	}
	return keys, res, nil
}

// RunCollect executes the collect command.
func RunCollect(ctx context.Context, cfg config.Config, api APIArgs, log zerolog.Logger) *output.Result {
	start := time.Now()
	result := &output.Result{Command: "collect", Data: map[string]any{"api_url": api.URL}}

	keys, res, err := collectKeys(ctx, cfg, api, log)
	result.Data["elapsed_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		var ge *pagination.GuardError
		if errors.As(err, &ge) {
			result.Outcome = "guard_tripped"
			result.Data["max_pages"] = ge.MaxPages
			result.Data["items"] = ge.Collected
		}
		return result
	}

	result.Success = true
	result.Outcome = string(res.Stop)
	result.Data["items"] = len(res.Items)
	result.Data["fetches"] = res.Fetches
	result.Data["pages"] = res.Pages
	result.Data["page_size"] = cfg.PageSize
	if empty := countEmpty(keys); empty > 0 {
		result.Data["items_without_key"] = empty
	}
	return result
}

func countEmpty(keys []string) int {
	n := 0
	for _, k := range keys {
		if k == "" {
			n++
		}
	}
	return n
}
