package server

import (
	"github.com/lexandro/copyrighter/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.3.0"

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	applyHandler *tools.ApplyHandler,
	checkHandler *tools.CheckHandler,
	replacedHandler *tools.ReplacedHandler,
	statusHandler *tools.StatusHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "copyrighter",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server keeps license headers current across the Maven projects under its root directory.

- Use copyright_check before editing a Java, XML or Clojure file's leading comment by hand
- Use copyright_apply with dryRun to list files whose header is out of date, then without dryRun to rewrite them
- Use copyright_replaced to find which old headers (authors, licenses) were removed by earlier sweeps`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "copyright_apply",
		Description: `Apply the license header to every selected file of every project (directories containing pom.xml).

Existing leading header comments are replaced; the rest of each file is kept byte for byte.
With dryRun the files are only checked and the out-of-date ones are listed.`,
	}, applyHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "copyright_check",
		Description: `Check whether one file carries the current license header and show the header that would be replaced. Never writes the file.`,
	}, checkHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "copyright_replaced",
		Description: `Search header comments removed by sweeps in this session.

Query formats:
  - Plain text: word-level matching (e.g., "acme")
  - "quoted text": exact phrase matching (e.g., "\"all rights reserved\"")
  - /regex/: regular expression matching a single term (e.g., "/19[0-9]{2}/")`,
	}, replacedHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "copyright_status",
		Description: "Show root directory, uptime, the last sweep's counts and the number of replaced headers recorded.",
	}, statusHandler.Handle)

	return mcpServer
}
