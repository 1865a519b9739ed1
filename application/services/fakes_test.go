package services

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"
)

// In-memory fakes for the ports, with error injection knobs. Each test builds
// only the fakes it needs.

type memRegistrations struct {
	regs      map[string]*model.Registration
	getErr    error
	listErr   error
	createErr error
	deleteErr error
	updateErr error

	hardDeletes []string
}

func newMemRegistrations(regs ...*model.Registration) *memRegistrations {
	m := &memRegistrations{regs: map[string]*model.Registration{}}
	for _, reg := range regs {
		m.put(reg)
	}
	return m
}

func regKey(userID, deviceID string) string {
	return userID + "|" + deviceID
}

func (m *memRegistrations) put(reg *model.Registration) {
	copied := *reg
	m.regs[regKey(reg.UserID, reg.DeviceID)] = &copied
}

func (m *memRegistrations) Get(_ context.Context, userID, deviceID string) (*model.Registration, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	reg, ok := m.regs[regKey(userID, deviceID)]
	if !ok {
		return nil, nil
	}
	copied := *reg
	return &copied, nil
}

func (m *memRegistrations) Create(_ context.Context, reg *model.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.put(reg)
	return nil
}

func (m *memRegistrations) Update(_ context.Context, reg *model.Registration) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.put(reg)
	return nil
}

func (m *memRegistrations) HardDelete(_ context.Context, userID, deviceID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.hardDeletes = append(m.hardDeletes, regKey(userID, deviceID))
	delete(m.regs, regKey(userID, deviceID))
	return nil
}

func (m *memRegistrations) ListByDevice(_ context.Context, deviceID string) ([]model.Registration, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Registration
	for _, reg := range m.regs {
		if reg.DeviceID == deviceID && reg.Status != model.RegistrationDeleted {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (m *memRegistrations) ListPendingByDevice(_ context.Context, deviceID string) ([]model.Registration, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Registration
	for _, reg := range m.regs {
		if reg.DeviceID == deviceID && reg.Status == model.RegistrationPending {
			out = append(out, *reg)
		}
	}
	return out, nil
}

func (m *memRegistrations) ListByUser(_ context.Context, userID, _ string) (ports.Page[model.Registration], error) {
	var page ports.Page[model.Registration]
	if m.listErr != nil {
		return page, m.listErr
	}
	for _, reg := range m.regs {
		if reg.UserID == userID && reg.Status != model.RegistrationDeleted {
			page.Items = append(page.Items, *reg)
		}
	}
	return page, nil
}

func (m *memRegistrations) ListAllByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	page, err := m.ListByUser(ctx, userID, "")
	return page.Items, err
}

type memCommands struct {
	cmds      []*model.Command
	createErr error
	getErr    error
	listErr   error
}

func (m *memCommands) Create(_ context.Context, cmd *model.Command) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *cmd
	m.cmds = append(m.cmds, &copied)
	return nil
}

func (m *memCommands) Get(_ context.Context, deviceID, commandID string) (*model.Command, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, cmd := range m.cmds {
		if cmd.DeviceID == deviceID && cmd.CommandID == commandID {
			copied := *cmd
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memCommands) ListByDevice(_ context.Context, deviceID, status, _ string) (ports.Page[model.Command], error) {
	var page ports.Page[model.Command]
	if m.listErr != nil {
		return page, m.listErr
	}
	for _, cmd := range m.cmds {
		if cmd.DeviceID == deviceID && (status == "" || cmd.Status == status) {
			page.Items = append(page.Items, *cmd)
		}
	}
	return page, nil
}

type memEvents struct {
	events    []*model.Event
	createErr error
	getErr    error
	markErr   error
	listErr   error
	countErr  error

	marked []string
	count  int
}

func (m *memEvents) Create(_ context.Context, ev *model.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *ev
	m.events = append(m.events, &copied)
	return nil
}

func (m *memEvents) Get(_ context.Context, deviceID, eventID string) (*model.Event, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, ev := range m.events {
		if ev.DeviceID == deviceID && ev.ID == eventID {
			copied := *ev
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memEvents) MarkViewed(_ context.Context, deviceID, eventID string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.marked = append(m.marked, deviceID+"|"+eventID)
	for _, ev := range m.events {
		if ev.DeviceID == deviceID && ev.ID == eventID {
			ev.Ack = true
			ev.Suppress = true
		}
	}
	return nil
}

func (m *memEvents) ListByDevice(_ context.Context, deviceID, eventType, _ string) (ports.Page[model.Event], error) {
	var page ports.Page[model.Event]
	if m.listErr != nil {
		return page, m.listErr
	}
	for _, ev := range m.events {
		if ev.DeviceID == deviceID && (eventType == "" || ev.Type == eventType) {
			page.Items = append(page.Items, *ev)
		}
	}
	return page, nil
}

func (m *memEvents) ListByUser(_ context.Context, userID, deviceID, eventType, _ string) (ports.Page[model.Event], error) {
	var page ports.Page[model.Event]
	if m.listErr != nil {
		return page, m.listErr
	}
	for _, ev := range m.events {
		if ev.UserID != userID {
			continue
		}
		if deviceID != "" && ev.DeviceID != deviceID {
			continue
		}
		if eventType != "" && ev.Type != eventType {
			continue
		}
		page.Items = append(page.Items, *ev)
	}
	return page, nil
}

func (m *memEvents) ListAlerts(_ context.Context, userID string, alertLevel []string, deviceID, _ string) (ports.Page[model.Event], error) {
	var page ports.Page[model.Event]
	if m.listErr != nil {
		return page, m.listErr
	}
	levels := map[string]bool{}
	for _, l := range alertLevel {
		levels[l] = true
	}
	for _, ev := range m.events {
		if ev.UserID != userID || ev.Ack || !levels[ev.Type] {
			continue
		}
		if deviceID != "" && ev.DeviceID != deviceID {
			continue
		}
		page.Items = append(page.Items, *ev)
	}
	return page, nil
}

func (m *memEvents) CountAlerts(ctx context.Context, userID string, alertLevel []string, deviceID string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	page, err := m.ListAlerts(ctx, userID, alertLevel, deviceID, "")
	return len(page.Items), err
}

type memSettings struct {
	settings map[string]*model.UserSetting
	getErr   error
	putErr   error
}

func newMemSettings(settings ...*model.UserSetting) *memSettings {
	m := &memSettings{settings: map[string]*model.UserSetting{}}
	for _, s := range settings {
		copied := *s
		m.settings[s.SettingID] = &copied
	}
	return m
}

func (m *memSettings) Get(_ context.Context, settingID string) (*model.UserSetting, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	setting, ok := m.settings[settingID]
	if !ok {
		return nil, nil
	}
	copied := *setting
	return &copied, nil
}

func (m *memSettings) Put(_ context.Context, setting *model.UserSetting) error {
	if m.putErr != nil {
		return m.putErr
	}
	copied := *setting
	m.settings[setting.SettingID] = &copied
	return nil
}

type memReferences struct {
	models map[string]map[string]interface{}
	getErr error
}

func (m *memReferences) Get(_ context.Context, modelNumber string) (map[string]interface{}, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.models[modelNumber], nil
}

type fakeShadow struct {
	state     map[string]interface{}
	getErr    error
	updateErr error

	updates []map[string]interface{}
}

func (f *fakeShadow) Get(_ context.Context, _ string) (map[string]interface{}, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.state, nil
}

func (f *fakeShadow) UpdateDesired(_ context.Context, _ string, desired map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, desired)
	return nil
}

type fakePublisher struct {
	err    error
	topics []string
}

func (f *fakePublisher) Publish(_ context.Context, topic string, _ interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	return nil
}

type fakeRegistry struct {
	certARN    string
	commonName string

	describeErr        error
	activateErr        error
	createThingErr     error
	deleteThingErr     error
	attachPrincipalErr error
	attachPolicyErr    error

	activated        []string
	createdThings    []string
	deletedThings    []string
	attachedThings   []string
	attachedPolicies []string
}

func (f *fakeRegistry) DescribeCertificate(_ context.Context, certificateID string) (string, string, error) {
	if f.describeErr != nil {
		return "", "", f.describeErr
	}
	arn := f.certARN
	if arn == "" {
		arn = fmt.Sprintf("arn:aws:iot:cert/%s", certificateID)
	}
	return arn, f.commonName, nil
}

func (f *fakeRegistry) ActivateCertificate(_ context.Context, certificateID string) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated = append(f.activated, certificateID)
	return nil
}

func (f *fakeRegistry) CreateThing(_ context.Context, thingName string) error {
	if f.createThingErr != nil {
		return f.createThingErr
	}
	f.createdThings = append(f.createdThings, thingName)
	return nil
}

func (f *fakeRegistry) DeleteThing(_ context.Context, thingName string) error {
	if f.deleteThingErr != nil {
		return f.deleteThingErr
	}
	f.deletedThings = append(f.deletedThings, thingName)
	return nil
}

func (f *fakeRegistry) AttachThingPrincipal(_ context.Context, thingName, _ string) error {
	if f.attachPrincipalErr != nil {
		return f.attachPrincipalErr
	}
	f.attachedThings = append(f.attachedThings, thingName)
	return nil
}

func (f *fakeRegistry) AttachPolicy(_ context.Context, policyName, _ string) error {
	if f.attachPolicyErr != nil {
		return f.attachPolicyErr
	}
	f.attachedPolicies = append(f.attachedPolicies, policyName)
	return nil
}

type fakeIdentity struct {
	phone string
	err   error
}

func (f *fakeIdentity) PhoneNumber(_ context.Context, _ string) (string, error) {
	return f.phone, f.err
}

type fakeSMS struct {
	err      error
	messages []string
}

func (f *fakeSMS) SendSMS(_ context.Context, _, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordCommand(context.Context, string, bool) {}
func (nopMetrics) RecordAlert(context.Context, bool)           {}
func (nopMetrics) RecordRegistration(context.Context, string)  {}

type nopLifecycle struct{}

func (nopLifecycle) Publish(context.Context, string, interface{}) error { return nil }
