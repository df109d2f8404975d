// Package domain contains the core conversion concepts: the validated request,
// the rendering capability interfaces and the error taxonomy.
// Keep this package free of transport (HTTP) and infrastructure (Chrome/Redis/Postgres) concerns.
package domain
