// Package settingsapi exposes the synchronous settings validation checks to
// the surrounding application over HTTP: can this mail configuration connect,
// is this push credential valid. The settings CRUD itself lives elsewhere in
// the platform; this surface only validates payloads it is handed, so the
// settings editor can verify a configuration before saving it.
package settingsapi
