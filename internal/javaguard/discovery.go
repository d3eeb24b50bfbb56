// Discovery strategies, each a small polymorphic kind implementing
// Strategy per spec §9 ("model as a trait with four concrete
// strategies; compose per-OS by constructing a list"). Grounded on the
// teacher's internals/java.Factory, which only ever looked in one
// fixed baseDir; this generalizes to the four discovery mechanisms
// spec §4.4 requires.
package javaguard

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Strategy discovers a set of candidate Java installation root
// directories.
type Strategy interface {
	Discover() []string
}

// PathStrategy tests a fixed list of absolute paths for the existence
// of the per-OS Java executable.
type PathStrategy struct {
	Paths []string
}

func (s PathStrategy) Discover() []string {
	out := make([]string, 0, len(s.Paths))
	for _, p := range s.Paths {
		if _, err := os.Stat(filepath.Join(p, javaExecutableSuffix())); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// DirectoryStrategy lists each given directory and treats every child
// directory as a candidate root.
type DirectoryStrategy struct {
	Directories []string
}

func (s DirectoryStrategy) Discover() []string {
	out := make([]string, 0)
	for _, dir := range s.Directories {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				out = append(out, filepath.Join(dir, e.Name()))
			}
		}
	}
	return out
}

// EnvStrategy reads JAVA_HOME, JRE_HOME, JDK_HOME and strips any
// trailing "/bin/java"-like suffix to recover the installation root.
type EnvStrategy struct {
	Vars []string
}

func DefaultEnvStrategy() EnvStrategy {
	return EnvStrategy{Vars: []string{"JAVA_HOME", "JRE_HOME", "JDK_HOME"}}
}

func (s EnvStrategy) Discover() []string {
	out := make([]string, 0, len(s.Vars))
	for _, v := range s.Vars {
		val := os.Getenv(v)
		if val == "" {
			continue
		}
		val = stripBinJavaSuffix(val)
		if _, err := os.Stat(val); err == nil {
			out = append(out, val)
		}
	}
	return out
}

func stripBinJavaSuffix(p string) string {
	p = strings.TrimSuffix(p, string(filepath.Separator))
	for _, suffix := range []string{
		filepath.Join("bin", "java.exe"),
		filepath.Join("bin", "javaw.exe"),
		filepath.Join("bin", "java"),
		filepath.Join("Contents", "Home", "bin", "java"),
	} {
		if strings.HasSuffix(p, string(filepath.Separator)+suffix) {
			return strings.TrimSuffix(p, string(filepath.Separator)+suffix)
		}
	}
	return p
}

// javaExecutableSuffix returns the per-OS relative path to the java
// binary inside an installation root, per spec §4.4.
func javaExecutableSuffix() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join("bin", "javaw.exe")
	case "darwin":
		return filepath.Join("Contents", "Home", "bin", "java")
	default:
		return filepath.Join("bin", "java")
	}
}

// WindowsRegistryKeys is the fixed set of HKLM subkeys the Windows
// registry strategy enumerates, per spec §4.4.
var WindowsRegistryKeys = []string{
	`SOFTWARE\JavaSoft\Java Runtime Environment`,
	`SOFTWARE\JavaSoft\Java Development Kit`,
	`SOFTWARE\JavaSoft\JRE`,
	`SOFTWARE\JavaSoft\JDK`,
}

// RegistryReader abstracts the Windows-registry read so the strategy is
// testable without a real registry and so non-Windows builds compile
// without golang.org/x/sys/windows/registry. A real implementation
// belongs in a windows-tagged file wiring x/sys/windows/registry, the
// way the teacher's own Windows-only paths are isolated behind build
// tags (see internals/java for the OS-specific execution).
type RegistryReader interface {
	// SubKeys lists the version subkey names under key.
	SubKeys(key string) ([]string, error)
	// JavaHome reads the "JavaHome" value from key\version.
	JavaHome(key, version string) (string, error)
}

// RegistryStrategy enumerates the fixed HKLM keys and reads each
// version subkey's JavaHome, dropping entries whose path contains
// "(x86)" per spec §4.4.
type RegistryStrategy struct {
	Reader RegistryReader
	Keys   []string
}

func (s RegistryStrategy) Discover() []string {
	if s.Reader == nil {
		return nil
	}
	keys := s.Keys
	if keys == nil {
		keys = WindowsRegistryKeys
	}
	out := make([]string, 0)
	for _, key := range keys {
		versions, err := s.Reader.SubKeys(key)
		if err != nil {
			continue
		}
		for _, version := range versions {
			home, err := s.Reader.JavaHome(key, version)
			if err != nil || home == "" {
				continue
			}
			if strings.Contains(home, "(x86)") {
				continue
			}
			out = append(out, home)
		}
	}
	return out
}

// ComposeForOS builds the per-OS strategy list, per spec §4.4:
// Windows: env + directory (vendor Program Files dirs + runtime dir)
// across every mounted filesystem root, plus registry.
// macOS: env + directory (/Library/Java/JavaVirtualMachines + runtime)
// + one fixed plugin path.
// Linux: env + directory (/usr/lib/jvm + runtime).
func ComposeForOS(goos string, runtimeDir string, registry RegistryReader) []Strategy {
	switch goos {
	case "windows":
		vendorDirs := []string{
			`Program Files\Java`,
			`Program Files\Eclipse Adoptium`,
			`Program Files\Eclipse Foundation`,
			`Program Files\AdoptOpenJDK`,
			`Program Files\Amazon Corretto`,
		}
		dirs := make([]string, 0, len(vendorDirs)+1)
		for _, root := range mountedRoots() {
			for _, v := range vendorDirs {
				dirs = append(dirs, filepath.Join(root, v))
			}
		}
		dirs = append(dirs, runtimeDir)
		return []Strategy{
			DefaultEnvStrategy(),
			DirectoryStrategy{Directories: dirs},
			RegistryStrategy{Reader: registry},
		}
	case "darwin":
		return []Strategy{
			DefaultEnvStrategy(),
			DirectoryStrategy{Directories: []string{"/Library/Java/JavaVirtualMachines", runtimeDir}},
			PathStrategy{Paths: []string{"/Applications/Firefox.app/Contents/Frameworks/NPAPI/JavaAppletPlugin.plugin/Contents/Home"}},
		}
	default: // linux and friends
		return []Strategy{
			DefaultEnvStrategy(),
			DirectoryStrategy{Directories: []string{"/usr/lib/jvm", runtimeDir}},
		}
	}
}

// mountedRoots lists mounted filesystem roots to project Windows
// vendor directories across, per spec §4.4 ("projected across every
// mounted file-system root"). On Windows it probes the drive letters
// A: through Z: with os.Stat; on other platforms it returns nil.
func mountedRoots() []string {
	if runtime.GOOS != "windows" {
		return nil
	}
	roots := make([]string, 0, 4)
	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		if _, err := os.Stat(root); err == nil {
			roots = append(roots, root)
		}
	}
	return roots
}

// DiscoverAll runs every strategy and de-duplicates the resulting
// candidate roots.
func DiscoverAll(strategies []Strategy) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, s := range strategies {
		for _, root := range s.Discover() {
			clean := filepath.Clean(root)
			if !seen[clean] {
				seen[clean] = true
				out = append(out, clean)
			}
		}
	}
	return out
}
