/*
Package harvester copies the source files of a WordPress site's active theme
and installed plugins out of the built-in file editors, using an
authenticated administrator session.

A run is made of two flows:
  - Theme flow: read wp-admin/theme-editor.php, detect the theme name from
    the "theme" parameter of its links, then fetch every listed file.
  - Plugin flow: read the plugin selector on wp-admin/plugin-editor.php and,
    for every plugin, list and fetch its files into the Plugins container.

Each editor document yields a manifest of (identifier, URL) entries. The
layout builder mirrors the identifiers as empty files under
<output>/<container>/ and the retrieval engine fills them in from the
editor's textarea on a bounded worker pool.

Architecture

	├── cmd/                 # go-arg entry point
	├── internal/
	│   ├── domain/          # Credentials, Manifest, DomainError, ports
	│   ├── service/         # Extractor, layout, enumerator, retrieval
	│   ├── usecase/         # Harvester orchestrating both flows
	│   └── adapters/
	│       └── http/        # Cookie-authenticated client with retries
	└── mocks/               # testify mocks for the ports

Storage, configuration and observability live in the shared packages:
shared/storage provides the filesystem workspace and the optional S3
mirror, shared/config loads .env files and the environment, and
shared/observability hands out per-component loggers and Prometheus
collectors.

Usage

	codegrabber -u https://blog.example.com -c "wordpress_logged_in_x=..." -t -e css,txt -o ./loot
*/
package harvester
