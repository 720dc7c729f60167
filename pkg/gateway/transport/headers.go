package transport

// SessionIDHeader is the Streamable HTTP header carrying the MCP session id
// on every request after initialize, and on the initialize response.
const SessionIDHeader = "Mcp-Session-Id"
