package docs

import (
	"encoding/json"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/capturekit/capture-mcp-server/cmd/version"
)

// Collector keeps the catalog of everything registered on the MCP server
type Collector struct {
	logger *zap.Logger

	mu        sync.RWMutex
	modules   []string
	tools     []ToolInfo
	prompts   []PromptInfo
	resources []ResourceInfo
}

// NewCollector creates a new docs collector
func NewCollector(logger *zap.Logger) *Collector {
	return &Collector{
		logger: logger,
	}
}

// AddTools records the tools of an enabled module
func (c *Collector) AddTools(module string, serverTools []server.ServerTool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modules = append(c.modules, module)
	for _, serverTool := range serverTools {
		c.tools = append(c.tools, ToolInfo{
			Name:        serverTool.Tool.Name,
			Description: serverTool.Tool.Description,
			Parameters:  convertToolParameters(serverTool.Tool.InputSchema),
			Module:      module,
		})
	}
	c.logger.Debug("Tools added to catalog", zap.String("module", module), zap.Int("count", len(serverTools)))
}

// AddPrompts records registered prompts
func (c *Collector) AddPrompts(prompts []server.ServerPrompt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range prompts {
		info := PromptInfo{Name: p.Prompt.Name, Description: p.Prompt.Description}
		for _, arg := range p.Prompt.Arguments {
			info.Arguments = append(info.Arguments, arg.Name)
		}
		c.prompts = append(c.prompts, info)
	}
}

// AddResources records registered resources
func (c *Collector) AddResources(resources []server.ServerResource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range resources {
		c.resources = append(c.resources, ResourceInfo{
			URI:      r.Resource.URI,
			Name:     r.Resource.Name,
			MIMEType: r.Resource.MIMEType,
		})
	}
}

// CollectToolsInfo returns the current catalog
func (c *Collector) CollectToolsInfo() ToolsInfoResponse {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ToolsInfoResponse{
		Service:    version.ServiceName,
		Version:    version.Get().Version,
		TotalTools: len(c.tools),
		Modules:    append([]string{}, c.modules...),
		Tools:      append([]ToolInfo{}, c.tools...),
		Prompts:    append([]PromptInfo(nil), c.prompts...),
		Resources:  append([]ResourceInfo(nil), c.resources...),
	}
}

// convertToolParameters converts MCP tool input schema to a more readable format
func convertToolParameters(inputSchema mcp.ToolInputSchema) map[string]interface{} {
	params := make(map[string]interface{})

	required := make(map[string]bool, len(inputSchema.Required))
	for _, name := range inputSchema.Required {
		required[name] = true
	}

	for paramName, paramDef := range inputSchema.Properties {
		// round trip so typed option values become plain JSON values
		schemaBytes, err := json.Marshal(paramDef)
		if err != nil {
			continue
		}
		var paramDefMap map[string]interface{}
		if err := json.Unmarshal(schemaBytes, &paramDefMap); err != nil {
			continue
		}

		paramInfo := map[string]interface{}{
			"type": paramDefMap["type"],
		}
		if description, exists := paramDefMap["description"]; exists {
			paramInfo["description"] = description
		}
		if enum, exists := paramDefMap["enum"]; exists {
			paramInfo["enum"] = enum
		}
		if required[paramName] {
			paramInfo["required"] = true
		}

		params[paramName] = paramInfo
	}

	return params
}
