// Package mcp exposes pdfsqueeze compression over the Model Context Protocol.
//
// This implementation uses the MCP SDK (github.com/modelcontextprotocol/go-sdk/mcp)
// and registers three tools: compress_text squeezes inline text to a token
// budget, compress_file extracts a PDF or text file before compressing it, and
// estimate_tokens reports the budget cost of a text without touching it.
// Redaction runs before compression when requested so secrets never reach the
// sentence scorer or the client.
package mcp
