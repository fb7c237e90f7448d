package section

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, cfg Config) *Filter {
	t.Helper()
	f, err := Compile(cfg)
	require.NoError(t, err)
	return f
}

// iosConfig returns the regression fixture: two plain blocks, two banners,
// one banner without terminator and three interface stanzas.
func iosConfig() []string {
	return []string{
		"line 1",
		"start block erronous",
		"  should not be selected in start block erronous section",
		"start block",
		" should be seleted in start block section",
		"after start block section, should not be selected",
		"banner motd ^C",
		"! banner motd line1",
		"! banner motd line2",
		"^C",
		"banner illegal ^C ",
		"! shoult not be selected because ^C is not at line end",
		"^C",
		"banner login \x03",
		"! banner login line1",
		"! banner login line2",
		"^C",
		"start block",
		" should be seleted",
		"after section should not be selected",
		"xxxx ends with block end",
		" should be seleted1 block end",
		" should be seleted2 block end",
		"after section should not be selected",
		"banner exception ^C",
		"! raise exception because block end line ^C is missing",
		"interface GigabitEthernet1/0/30",
		" switchport mode access",
		" switchport voice vlan 60",
		" ip flow monitor IPv4_STEALTHWATCH_NETFLOW input",
		" switchport nonegotiate",
		" spanning-tree portfast",
		" storm-control multicast level 5.00",
		" storm-control broadcast level 5.00",
		" storm-control action trap",
		" storm-control action shutdown",
		" spanning-tree guard root",
		" ip arp inspection limit rate 400 burst interval 3",
		"!",
		"interface GigabitEthernet1/0/31",
		" switchport mode access",
		" switchport voice vlan 60",
		" ip flow monitor IPv4_STEALTHWATCH_NETFLOW input",
		" switchport nonegotiate",
		" spanning-tree portfast",
		" storm-control multicast level 5.00",
		" storm-control broadcast level 5.00",
		" storm-control action trap",
		" storm-control action shutdown",
		" spanning-tree guard root",
		" ip arp inspection limit rate 400 burst interval 3",
		"!",
		"interface GigabitEthernet1/0/32",
		" switchport mode access",
		" switchport voice vlan 60",
		" ip flow monitor IPv4_STEALTHWATCH_NETFLOW input",
		" switchport nonegotiate",
		" spanning-tree portfast",
		" storm-control multicast level 5.00",
		" storm-control broadcast level 5.00",
		" storm-control action trap",
		" storm-control action shutdown",
		" spanning-tree guard root",
		" ip arp inspection limit rate 400 burst interval 3",
		"!",
		"",
	}
}
