package discovery

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"
)

func TestProviderTXTRoundTrip(t *testing.T) {
	p := &Provider{
		Scheme:  "ca",
		Prefix:  "BL01:",
		Version: "1",
		Name:    "beamline gateway",
	}

	txt := EncodeProviderTXT(p)
	decoded, err := DecodeProviderTXT(txt)
	if err != nil {
		t.Fatalf("DecodeProviderTXT failed: %v", err)
	}
	if decoded.Scheme != p.Scheme || decoded.Prefix != p.Prefix ||
		decoded.Version != p.Version || decoded.Name != p.Name {
		t.Errorf("round trip = %+v, want %+v", decoded, p)
	}
}

func TestProviderTXTOmitsEmptyOptionals(t *testing.T) {
	txt := EncodeProviderTXT(&Provider{Scheme: "sim"})
	if len(txt) != 1 {
		t.Errorf("TXT = %v, want only scheme", txt)
	}
}

func TestDecodeProviderTXTRequiresScheme(t *testing.T) {
	_, err := DecodeProviderTXT(TXTRecordMap{TXTKeyPrefix: "X:"})
	if !errors.Is(err, ErrMissingRequired) {
		t.Errorf("err = %v, want ErrMissingRequired", err)
	}
}

func TestDecodeProviderTXTRejectsSchemeWithSeparator(t *testing.T) {
	_, err := DecodeProviderTXT(TXTRecordMap{TXTKeyScheme: "ca://"})
	if !errors.Is(err, ErrInvalidTXTRecord) {
		t.Errorf("err = %v, want ErrInvalidTXTRecord", err)
	}
}

func TestTXTStringConversion(t *testing.T) {
	txt := TXTRecordMap{"sch": "ca", "pfx": "X:", "flag": ""}

	strs := TXTRecordsToStrings(txt)
	sort.Strings(strs)
	want := []string{"flag=", "pfx=X:", "sch=ca"}
	if !reflect.DeepEqual(strs, want) {
		t.Errorf("strings = %v, want %v", strs, want)
	}

	back := StringsToTXTRecords([]string{"sch=ca", "pfx=X:", "flag"})
	if back["sch"] != "ca" || back["pfx"] != "X:" {
		t.Errorf("parsed = %v", back)
	}
	if _, ok := back["flag"]; !ok {
		t.Error("bare key dropped")
	}
}

func TestValidateInstanceName(t *testing.T) {
	if err := ValidateInstanceName("provider-1"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateInstanceName(""); err == nil {
		t.Error("empty name accepted")
	}
	if err := ValidateInstanceName(strings.Repeat("x", MaxInstanceNameLen+1)); !errors.Is(err, ErrInstanceNameTooLong) {
		t.Errorf("err = %v, want ErrInstanceNameTooLong", err)
	}
}

func TestMergeAddresses(t *testing.T) {
	got := mergeAddresses([]string{"fe80::1", "10.0.0.1"}, []string{"10.0.0.1", "10.0.0.2"})
	want := []string{"fe80::1", "10.0.0.1", "10.0.0.2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merged = %v, want %v", got, want)
	}
}
