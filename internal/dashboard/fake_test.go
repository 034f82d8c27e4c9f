package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/tessro/lookout/internal/core"
)

type insertCall struct {
	table  string
	record any
}

type fakeBackend struct {
	mu       sync.Mutex
	devices  []core.Device
	objects  map[string][]core.StorageObject
	queryErr error
	listErr  error
	insErr   error
	inserts  []insertCall
	listOpts []core.ListOptions
	prefixes []string
}

func (f *fakeBackend) QueryAll(_ context.Context, table, orderBy string, order core.SortOrder, out any) error {
	if f.queryErr != nil {
		return f.queryErr
	}
	ptr, ok := out.(*[]core.Device)
	if !ok {
		return fmt.Errorf("unexpected out type %T", out)
	}
	*ptr = append([]core.Device(nil), f.devices...)
	return nil
}

func (f *fakeBackend) Insert(_ context.Context, table string, record any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, insertCall{table: table, record: record})
	return f.insErr
}

func (f *fakeBackend) ListObjects(_ context.Context, prefix string, opts core.ListOptions) ([]core.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefix)
	f.listOpts = append(f.listOpts, opts)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects[prefix], nil
}

func (f *fakeBackend) PublicURL(prefix, name string) string {
	return "https://cdn.test/" + prefix + "/" + name
}

type journalCall struct {
	device core.Device
	cmd    core.Command
	err    error
}

type fakeJournal struct {
	calls []journalCall
	err   error
}

func (j *fakeJournal) Record(_ context.Context, device core.Device, cmd core.Command, sendErr error) error {
	j.calls = append(j.calls, journalCall{device: device, cmd: cmd, err: sendErr})
	return j.err
}
