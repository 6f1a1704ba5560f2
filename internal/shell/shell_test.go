package shell

import (
	"errors"
	"sync"
	"testing"
)

func TestCatalog(t *testing.T) {
	got := Catalog()
	want := []FeatureID{FeatureVoice, FeatureMessaging, FeatureScan, FeatureExperts}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, id := range want {
		if got[i].ID != id || got[i].Label == "" || got[i].Badge == "" {
			t.Fatalf("entry %d = %+v", i, got[i])
		}
	}
	got[0].Label = "mutated"
	if f, _ := Lookup(FeatureVoice); f.Label != "Voice AI Assistant" {
		t.Fatal("Catalog leaks internal slice")
	}
}

func TestOpenCloseToggle(t *testing.T) {
	s := New()
	if st := s.State(); !st.PickerOpen || st.Active != nil {
		t.Fatalf("initial = %+v", st)
	}

	st, err := s.Open(FeatureScan)
	if err != nil || st.PickerOpen || st.Active == nil || st.Active.ID != FeatureScan {
		t.Fatalf("open scan = %+v %v", st, err)
	}
	st, _ = s.Open(FeatureMessaging)
	if st.Active.ID != FeatureMessaging {
		t.Fatalf("open sms should replace scan: %+v", st)
	}

	st = s.TogglePicker()
	if !st.PickerOpen || st.Active == nil {
		t.Fatalf("toggle = %+v", st)
	}

	st = s.Close()
	if !st.PickerOpen || st.Active != nil {
		t.Fatalf("close = %+v", st)
	}
}

func TestOpen_UnknownFeature(t *testing.T) {
	s := New()
	_, _ = s.Open(FeatureVoice)
	st, err := s.Open("teleport")
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("err = %v", err)
	}
	if st.Active == nil || st.Active.ID != FeatureVoice {
		t.Fatalf("state changed on error: %+v", st)
	}
}

func TestAtMostOneActiveUnderConcurrency(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for _, f := range Catalog() {
		wg.Add(1)
		go func(id FeatureID) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, _ = s.Open(id)
				s.TogglePicker()
			}
		}(f.ID)
	}
	wg.Wait()
	if st := s.State(); st.Active == nil {
		t.Fatalf("expected one active feature, got %+v", st)
	}
}
