package keys

import (
	"bytes"
	"testing"
)

const sampleBrainKey = "DAWUT BULLBAT CONGEAL PRIUS AMBAN SWAYFUL STROW ROUTER MOSTLY PUNTO FALTCHE WARSEL INSERT CINEMA MORONRY BURO"

// Keys generated by the wallet for sampleBrainKey
var sampleAccount = []struct {
	role string
	wif  string
	pub  string
}{
	{"owner", "5JUR92r9BhKFwFXmkNDn26VURTaNouuCB9RKv4YdJGxuvDU8dXw", "RVP5THrbGQG65FYCmyYxZPfkmZSyQw8LXv6JJd2pSuAri3znxgVzC"},
	{"active", "5JbUcrw6SawrNBFADoSvHX8mxGgWgWaywEwEeV4gaktbcwUHCB2", "RVP8S63oDiWRUUgrgvnVqpZbgcrmhNWsJ2EFbow1PtTPkfGagZkqT"},
	{"memo", "5JBzaA9XLpyMCKsympdRd1kec5x1xUqmPnfCMHGSXTiVPQFiKmj", "RVP5FnB8fWetaBDmYoPQkDtazxU1mvZHiApXHSRrkuiNSTnxcsji1"},
}

func TestAccountKeys(t *testing.T) {
	set, err := AccountKeys(sampleBrainKey)
	if err != nil {
		t.Fatalf("AccountKeys() error = %v", err)
	}

	derived := map[string]*PrivateKey{"owner": set.Owner, "active": set.Active, "memo": set.Memo}
	for _, want := range sampleAccount {
		t.Run(want.role, func(t *testing.T) {
			key := derived[want.role]
			if got := key.WIF(); got != want.wif {
				t.Errorf("WIF() = %s, want %s", got, want.wif)
			}
			if got := key.PublicKey().String(); got != want.pub {
				t.Errorf("PublicKey().String() = %s, want %s", got, want.pub)
			}
		})
	}
}

func TestBrainKeyNormalization(t *testing.T) {
	messy := "  DAWUT\tBULLBAT   CONGEAL\nPRIUS AMBAN SWAYFUL STROW ROUTER MOSTLY PUNTO FALTCHE WARSEL INSERT CINEMA MORONRY BURO \r\n"
	if got := NormalizeBrainKey(messy); got != sampleBrainKey {
		t.Errorf("NormalizeBrainKey() = %q", got)
	}

	a, err := BrainPrivateKey(messy, 0)
	if err != nil {
		t.Fatalf("BrainPrivateKey() error = %v", err)
	}
	if a.WIF() != sampleAccount[0].wif {
		t.Errorf("messy brain key derived %s", a.WIF())
	}

	b, _ := BrainPrivateKey(sampleBrainKey, 1)
	if b.WIF() == a.WIF() {
		t.Error("different sequences derived the same key")
	}

	if _, err := BrainPrivateKey(sampleBrainKey, -1); err == nil {
		t.Error("BrainPrivateKey() accepted a negative sequence")
	}
}

func TestWIFRoundTrip(t *testing.T) {
	// Well-known graphene genesis key
	const wif = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"
	const pub = "RVP6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV"

	key, err := FromWIF(wif)
	if err != nil {
		t.Fatalf("FromWIF() error = %v", err)
	}
	if key.WIF() != wif {
		t.Errorf("WIF() = %s", key.WIF())
	}
	if key.PublicKey().String() != pub {
		t.Errorf("PublicKey().String() = %s, want %s", key.PublicKey().String(), pub)
	}

	generated, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey() error = %v", err)
	}
	back, err := FromWIF(generated.WIF())
	if err != nil {
		t.Fatalf("FromWIF() error = %v", err)
	}
	if !bytes.Equal(back.Bytes(), generated.Bytes()) {
		t.Error("WIF round trip changed the key")
	}
}

func TestFromWIFInvalid(t *testing.T) {
	valid := sampleAccount[0].wif
	tampered := []byte(valid)
	if tampered[10] == 'a' {
		tampered[10] = 'b'
	} else {
		tampered[10] = 'a'
	}

	for name, in := range map[string]string{
		"empty":      "",
		"not base58": "0OIl",
		"truncated":  valid[:len(valid)-2],
		"checksum":   string(tampered),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := FromWIF(in); err == nil {
				t.Errorf("FromWIF(%q) should fail", in)
			}
		})
	}
}

func TestPrivateKeyFromBytes(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"one", append(make([]byte, 31), 1), false},
		{"zero", make([]byte, 32), true},
		{"curve order", mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"), true},
		{"all ones", bytes.Repeat([]byte{0xff}, 32), true},
		{"short", make([]byte, 31), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PrivateKeyFromBytes(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("PrivateKeyFromBytes() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParsePublicKey(t *testing.T) {
	for _, want := range sampleAccount {
		pub, err := ParsePublicKey(want.pub, DefaultPrefix)
		if err != nil {
			t.Fatalf("ParsePublicKey(%s) error = %v", want.pub, err)
		}
		if pub.String() != want.pub {
			t.Errorf("String() = %s, want %s", pub.String(), want.pub)
		}

		priv, _ := FromWIF(want.wif)
		if !pub.Equal(priv.PublicKey()) {
			t.Errorf("%s: parsed key differs from the WIF public key", want.role)
		}
	}

	custom := mustKey(t).PublicKey()
	s := custom.StringWithPrefix("TEST")
	back, err := ParsePublicKey(s, "TEST")
	if err != nil || !back.Equal(custom) {
		t.Errorf("custom prefix round trip failed: %v", err)
	}

	if _, err := ParsePublicKey(sampleAccount[0].pub, "GPH"); err == nil {
		t.Error("ParsePublicKey() accepted the wrong prefix")
	}
	bad := sampleAccount[0].pub[:len(sampleAccount[0].pub)-1] + "1"
	if _, err := ParsePublicKey(bad, DefaultPrefix); err == nil {
		t.Error("ParsePublicKey() accepted a bad checksum")
	}
}

func TestSharedSecretSymmetric(t *testing.T) {
	alice := mustKey(t)
	bob := mustKey(t)

	ab := alice.SharedSecret(bob.PublicKey())
	ba := bob.SharedSecret(alice.PublicKey())
	if len(ab) != 64 {
		t.Fatalf("SharedSecret() length = %d, want 64", len(ab))
	}
	if !bytes.Equal(ab, ba) {
		t.Error("SharedSecret() is not symmetric")
	}

	carol := mustKey(t)
	if bytes.Equal(ab, alice.SharedSecret(carol.PublicKey())) {
		t.Error("different peers produced the same secret")
	}
}

func mustKey(t *testing.T) *PrivateKey {
	t.Helper()
	k, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey() error = %v", err)
	}
	return k
}
