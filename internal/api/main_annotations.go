// Governing: SPEC-0007 REQ "Main Swagger Annotation Block", ADR-0010

// @title           linkdeck API
// @version         1.0
// @description     Multi-tenant link shortener. Authenticate with a Personal Access Token.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your API token. Example: "Bearer ld_xxx"
package api
