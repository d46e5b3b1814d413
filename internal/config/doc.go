// Package config loads the booking configuration of haircut-mcp.
//
// Values come from BOKADIREKT_* environment variables, optionally
// supplied through a dotenv file in the working directory. A variable set
// in the process environment overrides the same key in the file.
package config
