// Property introspection: spawn `<java> -XshowSettings:properties
// -version` and parse its stderr output into a property map, per spec
// §4.4. Grounded on the teacher's internals/java, which shells out to
// java-family binaries but never parsed -XshowSettings output; this is
// new functionality built in the same "wrap os/exec, decode text"
// idiom used across the pack (e.g. sampctl's process wrappers around
// external tools).
package javaguard

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ResolveExecutable substitutes javaw.exe with java.exe where
// applicable, per spec §4.4 ("substitute javaw.exe with java.exe where
// applicable").
func ResolveExecutable(root string) string {
	bin := filepath.Join(root, javaExecutableSuffix())
	if filepath.Base(bin) == "javaw.exe" {
		return filepath.Join(filepath.Dir(bin), "java.exe")
	}
	return bin
}

// listValuedKeys are known property keys that should always be
// normalized to a []string, even for a single value, per spec §4.4.
var listValuedKeys = map[string]bool{
	"java.library.path":   true,
	"java.class.path":     true,
	"java.ext.dirs":       true,
	"sun.boot.class.path": true,
}

// Introspect spawns the java binary at root and parses its printed
// properties into a map.
func Introspect(ctx context.Context, root string) (map[string]interface{}, error) {
	bin := ResolveExecutable(root)
	cmd := exec.CommandContext(ctx, bin, "-XshowSettings:properties", "-version")
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrapf(err, "javaguard: attach stderr pipe for %s", bin)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "javaguard: start %s", bin)
	}

	props := ParseProperties(stderr)

	if err := cmd.Wait(); err != nil {
		if len(props) == 0 {
			return nil, errors.Wrapf(err, "javaguard: run %s", bin)
		}
	}

	return props, nil
}

// ParseProperties parses the two-indent-level property dump printed by
// `-XshowSettings:properties` on r: 4-space "key = value" lines, and
// 8-space continuation lines that extend the previous key into a list,
// per spec §4.4.
func ParseProperties(r io.Reader) map[string]interface{} {
	props := make(map[string]interface{})
	scanner := bufio.NewScanner(r)

	var lastKey string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "        "): // 8-space continuation
			if lastKey == "" {
				continue
			}
			value := strings.TrimSpace(line)
			appendListValue(props, lastKey, value)

		case strings.HasPrefix(line, "    "): // 4-space "key = value"
			trimmed := strings.TrimPrefix(line, "    ")
			idx := strings.Index(trimmed, " = ")
			if idx < 0 {
				continue
			}
			key := trimmed[:idx]
			value := trimmed[idx+3:]
			lastKey = key

			if listValuedKeys[key] {
				appendListValue(props, key, value)
			} else {
				props[key] = value
			}
		}
	}

	return props
}

func appendListValue(props map[string]interface{}, key, value string) {
	existing, ok := props[key]
	if !ok {
		props[key] = []string{value}
		return
	}
	list, ok := existing.([]string)
	if !ok {
		list = []string{existing.(string)}
	}
	props[key] = append(list, value)
}
