package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/kispace-io/appspace/internal/loader"
	"github.com/kispace-io/appspace/internal/registry"
)

// parseExtensionArg splits "namespace.name[@version]".
func parseExtensionArg(arg string) (namespace, name, version string, err error) {
	id, version, _ := strings.Cut(strings.TrimSpace(arg), "@")
	namespace, name, err = registry.SplitID(id)
	if err != nil {
		return "", "", "", err
	}
	return namespace, name, version, nil
}

// loadExtension resolves arg against the registry and loads the package.
// A pinned version is loaded without a metadata request when the cache or
// the synthesized download URL can serve it.
func loadExtension(ctx context.Context, arg string) (*loader.Package, error) {
	ns, name, version, err := parseExtensionArg(arg)
	if err != nil {
		return nil, err
	}
	ext := &registry.Extension{Namespace: ns, Name: name, Version: version}
	if version == "" {
		ext, err = env.registry.GetExtension(ctx, ns, name, "")
		if err != nil {
			return nil, fmt.Errorf("looking up %s.%s: %w", ns, name, err)
		}
	}
	return env.loader.LoadFromRegistryExtension(ctx, ext)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
