package authoritative

import (
	"testing"

	"github.com/lucaspiller/dnsd/internal/dns/domain"
	"github.com/lucaspiller/dnsd/internal/dns/zone"
)

func mustA(t *testing.T, name string) domain.ResourceRecord {
	t.Helper()
	rr, err := domain.NewAuthoritativeRecord(name, domain.RRTypeA, domain.RRClassIN, 300, []byte{192, 0, 2, 1})
	if err != nil {
		t.Fatalf("NewAuthoritativeRecord: %v", err)
	}
	return rr
}

func mustCNAME(t *testing.T, name, target string) domain.ResourceRecord {
	t.Helper()
	raw := encodeNameForTest(t, target)
	rr, err := domain.NewAuthoritativeRecord(name, domain.RRTypeCNAME, domain.RRClassIN, 300, raw)
	if err != nil {
		t.Fatalf("NewAuthoritativeRecord: %v", err)
	}
	return rr
}

func mustNS(t *testing.T, name, target string) domain.ResourceRecord {
	t.Helper()
	raw := encodeNameForTest(t, target)
	rr, err := domain.NewAuthoritativeRecord(name, domain.RRTypeNS, domain.RRClassIN, 300, raw)
	if err != nil {
		t.Fatalf("NewAuthoritativeRecord: %v", err)
	}
	return rr
}

func encodeNameForTest(t *testing.T, name string) []byte {
	t.Helper()
	var out []byte
	for _, label := range splitLabels(name) {
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	return out
}

func splitLabels(name string) []string {
	var labels []string
	start := 0
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			if i > start {
				labels = append(labels, name[start:i])
			}
			start = i + 1
		}
	}
	return labels
}

func question(t *testing.T, name string, rrtype domain.RRType) domain.Question {
	t.Helper()
	q, err := domain.NewQuestion(name, rrtype, domain.RRClassIN)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	return q
}

type allowAll struct{}

func (allowAll) Decide(string) domain.BlockDecision { return domain.AllowDecision() }

type denyAll struct{}

func (denyAll) Decide(string) domain.BlockDecision {
	return domain.BlockDecision{Blocked: true, MatchedRule: "*"}
}

func TestRespondAnswersFromZone(t *testing.T) {
	z := zone.NewZone("example.com.")
	z.Add(mustA(t, "www.example.com."))
	store := zone.NewStore()
	store.AddZone(z)

	r := New(Options{Zones: store})
	req := domain.Message{ID: 42, Flags: domain.Flags{RD: true}, Question: []domain.Question{question(t, "www.example.com.", domain.RRTypeA)}}

	resp := r.Respond(req)
	if resp.ID != 42 || !resp.Flags.QR || !resp.Flags.AA || resp.Flags.RA {
		t.Fatalf("unexpected header flags: %+v", resp.Flags)
	}
	if resp.Flags.RCode != domain.RCodeNoError || len(resp.Answer) != 1 {
		t.Fatalf("resp = %+v, want one answer and NOERROR", resp)
	}
}

func TestRespondNXDomainForUncoveredName(t *testing.T) {
	store := zone.NewStore()
	store.AddZone(zone.NewZone("example.com."))

	r := New(Options{Zones: store})
	req := domain.Message{ID: 1, Question: []domain.Question{question(t, "nope.example.com.", domain.RRTypeA)}}

	resp := r.Respond(req)
	if resp.Flags.RCode != domain.RCodeNXDomain {
		t.Errorf("RCode = %v, want NXDOMAIN", resp.Flags.RCode)
	}
}

func TestRespondReferralForDelegatedSubzone(t *testing.T) {
	z := zone.NewZone("example.com.")
	z.Add(mustNS(t, "sub.example.com.", "ns1.sub.example.com."))
	store := zone.NewStore()
	store.AddZone(z)

	r := New(Options{Zones: store})
	req := domain.Message{ID: 2, Question: []domain.Question{question(t, "host.sub.example.com.", domain.RRTypeA)}}

	resp := r.Respond(req)
	if resp.Flags.RCode != domain.RCodeNoError || len(resp.Authority) != 1 {
		t.Fatalf("resp = %+v, want a referral", resp)
	}
}

func TestRespondFollowsCNAMEWithinZone(t *testing.T) {
	z := zone.NewZone("example.com.")
	z.Add(mustCNAME(t, "alias.example.com.", "www.example.com."))
	z.Add(mustA(t, "www.example.com."))
	store := zone.NewStore()
	store.AddZone(z)

	r := New(Options{Zones: store})
	req := domain.Message{ID: 5, Question: []domain.Question{question(t, "alias.example.com.", domain.RRTypeA)}}

	resp := r.Respond(req)
	if resp.Flags.RCode != domain.RCodeNoError || len(resp.Answer) != 2 {
		t.Fatalf("resp = %+v, want CNAME + A answer", resp)
	}
	if resp.Answer[0].Type != domain.RRTypeCNAME || resp.Answer[1].Type != domain.RRTypeA {
		t.Fatalf("resp.Answer = %+v, want [CNAME, A]", resp.Answer)
	}
}

func TestRespondCNAMEWithoutTargetDataReturnsAliasOnly(t *testing.T) {
	z := zone.NewZone("example.com.")
	z.Add(mustCNAME(t, "dangling.example.com.", "nowhere.example.com."))
	store := zone.NewStore()
	store.AddZone(z)

	r := New(Options{Zones: store})
	req := domain.Message{ID: 6, Question: []domain.Question{question(t, "dangling.example.com.", domain.RRTypeA)}}

	resp := r.Respond(req)
	if resp.Flags.RCode != domain.RCodeNoError || len(resp.Answer) != 1 {
		t.Fatalf("resp = %+v, want the CNAME alone", resp)
	}
}

func TestRespondBlockedNameIsNXDomainWithoutZoneLookup(t *testing.T) {
	z := zone.NewZone("example.com.")
	z.Add(mustA(t, "ads.example.com."))
	store := zone.NewStore()
	store.AddZone(z)

	r := New(Options{Zones: store, Blocklist: denyAll{}})
	req := domain.Message{ID: 3, Question: []domain.Question{question(t, "ads.example.com.", domain.RRTypeA)}}

	resp := r.Respond(req)
	if resp.Flags.RCode != domain.RCodeNXDomain || len(resp.Answer) != 0 {
		t.Fatalf("resp = %+v, want blocked NXDOMAIN", resp)
	}
}

func TestRespondFormErrOnEmptyQuestionSection(t *testing.T) {
	r := New(Options{Zones: zone.NewStore(), Blocklist: allowAll{}})
	resp := r.Respond(domain.Message{ID: 9})
	if resp.Flags.RCode != domain.RCodeFormErr {
		t.Errorf("RCode = %v, want FORMERR", resp.Flags.RCode)
	}
}
