//go:build windows

package javaguard

import "golang.org/x/sys/windows/registry"

// windowsRegistryReader implements RegistryReader against the real
// Windows registry via golang.org/x/sys/windows/registry, backing
// RegistryStrategy in production.
type windowsRegistryReader struct{}

// NewPlatformRegistryReader returns a RegistryReader backed by the
// real HKEY_LOCAL_MACHINE registry, per spec §4.4's Windows-registry
// discovery strategy.
func NewPlatformRegistryReader() RegistryReader {
	return windowsRegistryReader{}
}

func (windowsRegistryReader) SubKeys(key string) ([]string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, err
	}
	defer k.Close()
	return k.ReadSubKeyNames(-1)
}

func (windowsRegistryReader) JavaHome(key, version string) (string, error) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key+`\`+version, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer k.Close()
	v, _, err := k.GetStringValue("JavaHome")
	return v, err
}
