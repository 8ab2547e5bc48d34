package proxy

import (
	"bytes"
	"strings"
)

// WebSocketPath is where the injected script connects back to the engine.
const WebSocketPath = "/__uisel/ws"

// pickerScript is the page side of the selection bridge. It forwards pointer
// events for the listeners the engine registers, draws the overlays the
// engine positions, and hosts the floating prompt panel.
const pickerScript = `
<script data-uisel>
(function() {
  'use strict';
  if (window.__uisel) return;

  var protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
  var WS_URL = protocol + '//' + window.location.host + '` + WebSocketPath + `';
  var MAX_RECONNECT_ATTEMPTS = 5;
  var ws = null;
  var reconnectAttempts = 0;

  var config = { container: 'body', exclude: '.prompt-panel-floating', annotation: 'data-component', pulseMs: 300, toastPosition: 'bottom-right', toastsEnabled: true };
  var listeners = {};
  var overlays = {};
  var toasts = {};
  var panel = null;
  var toastRoot = null;
  var lastPrompt = '';

  function connect() {
    try {
      ws = new WebSocket(WS_URL);
      ws.onopen = function() {
        reconnectAttempts = 0;
        send({ type: 'hello', url: window.location.href, title: document.title });
      };
      ws.onmessage = function(event) {
        try {
          handle(JSON.parse(event.data));
        } catch (err) {
          console.error('[uisel] bad message:', err);
        }
      };
      ws.onclose = function() {
        teardown();
        if (reconnectAttempts < MAX_RECONNECT_ATTEMPTS) {
          reconnectAttempts++;
          setTimeout(connect, 1000 * reconnectAttempts);
        }
      };
    } catch (err) {
      console.error('[uisel] connect failed:', err);
    }
  }

  function send(msg) {
    if (ws && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify(msg));
    }
  }

  function containerEl() {
    try {
      return document.querySelector(config.container) || document.body;
    } catch (e) {
      return document.body;
    }
  }

  function excluded(el) {
    if (!config.exclude || !el || !el.closest) return false;
    try {
      return !!el.closest(config.exclude);
    } catch (e) {
      return false;
    }
  }

  function qualifies(el) {
    var c = containerEl();
    return !!el && !!c && c.contains(el) && !excluded(el);
  }

  function nodeSnapshot(el) {
    var attrs = {};
    for (var i = 0; i < el.attributes.length; i++) {
      var a = el.attributes[i];
      if (a.name === 'id' || a.name === config.annotation || a.name.indexOf('data-') === 0 || a.name === 'role' || a.name === 'type') {
        attrs[a.name] = a.value;
      }
    }
    var r = el.getBoundingClientRect();
    return {
      tag: el.tagName,
      class: typeof el.className === 'string' ? el.className : (el.getAttribute('class') || ''),
      attrs: attrs,
      text: (el.textContent || '').slice(0, 200),
      rect: { left: r.left, top: r.top, width: r.width, height: r.height }
    };
  }

  function frames(el) {
    var key = null;
    for (var k in el) {
      if (k.indexOf('__reactFiber') === 0 || k.indexOf('__reactInternalInstance') === 0) { key = k; break; }
    }
    var fiber = key ? el[key] : el._reactInternalFiber;
    var out = [];
    for (var n = 0; fiber && n < 50; n++, fiber = fiber.return) {
      var t = fiber.type;
      if (!t) continue;
      if (typeof t === 'string') {
        out.push({ kind: 'host', name: t });
      } else if (typeof t === 'function') {
        var isClass = t.prototype && t.prototype.isReactComponent;
        out.push({ kind: isClass ? 'class' : 'function', name: t.name || '', displayName: t.displayName || '' });
      }
    }
    return out;
  }

  function snapshot(target) {
    var path = [];
    var containerIdx = null;
    var c = containerEl();
    for (var el = target; el && el.nodeType === 1; el = el.parentElement) {
      if (el === c) containerIdx = path.length;
      path.push(nodeSnapshot(el));
    }
    var snap = { path: path, frames: frames(target), scrollX: window.scrollX, scrollY: window.scrollY };
    if (containerIdx !== null) snap.container = containerIdx;
    return snap;
  }

  var domEvents = { pointermove: 'mousemove', pointerleave: 'mouseleave', click: 'click' };

  function listen(msg) {
    var domEvent = domEvents[msg.kind];
    if (!domEvent) return;
    var fn = function(e) {
      if (msg.kind === 'pointerleave') {
        send({ type: 'pointerleave' });
        return;
      }
      var target = e.target;
      if (!target || target.nodeType !== 1) return;
      if (msg.kind === 'click' && qualifies(target)) {
        e.preventDefault();
        e.stopPropagation();
      }
      send({ type: msg.kind, event: snapshot(target) });
    };
    document.addEventListener(domEvent, fn, !!msg.capture);
    listeners[msg.id] = { event: domEvent, fn: fn, capture: !!msg.capture };
  }

  function unlisten(msg) {
    var l = listeners[msg.id];
    if (!l) return;
    document.removeEventListener(l.event, l.fn, l.capture);
    delete listeners[msg.id];
  }

  function overlayOp(msg) {
    var el = overlays[msg.id];
    switch (msg.op) {
      case 'create':
        el = document.createElement('div');
        el.className = 'element-highlight-overlay';
        el.style.cssText = 'position:absolute;display:none;pointer-events:none;border:3px solid #3498db;border-radius:4px;' +
          'background:rgba(52,152,219,0.1);z-index:2147483645;transition:all 0.1s ease;' +
          'box-shadow:0 0 0 2px rgba(52,152,219,0.3),0 0 20px rgba(52,152,219,0.5)';
        document.body.appendChild(el);
        overlays[msg.id] = el;
        break;
      case 'show':
        if (!el) return;
        var g = msg.geometry;
        el.style.display = 'block';
        el.style.left = g.left + 'px';
        el.style.top = g.top + 'px';
        el.style.width = g.width + 'px';
        el.style.height = g.height + 'px';
        break;
      case 'hide':
        if (el) el.style.display = 'none';
        break;
      case 'pulse':
        if (el) el.style.animation = msg.pulse ? 'uiselPulse ' + config.pulseMs + 'ms ease-out' : '';
        break;
      case 'remove':
        if (!el) return;
        delete overlays[msg.id];
        // Let a running pulse finish before the overlay disappears.
        setTimeout(function() { if (el.parentNode) el.parentNode.removeChild(el); }, el.style.animation ? config.pulseMs : 0);
        break;
    }
  }

  function teardown() {
    for (var id in listeners) unlisten({ id: id });
    for (var oid in overlays) overlayOp({ op: 'remove', id: oid });
    document.body.style.cursor = '';
  }

  function ensureToastRoot() {
    if (toastRoot) return toastRoot;
    toastRoot = document.createElement('div');
    toastRoot.className = 'prompt-panel-floating uisel-toasts';
    var pos = (config.toastPosition || 'bottom-right').split('-');
    toastRoot.style.cssText = 'position:fixed;' + pos[0] + ':16px;' + pos[1] + ':16px;z-index:2147483647;' +
      'display:flex;flex-direction:column;gap:8px;font:13px system-ui,sans-serif';
    document.body.appendChild(toastRoot);
    return toastRoot;
  }

  var toastColors = { success: '#27ae60', error: '#c0392b', info: '#2980b9' };

  function toastOp(msg) {
    if (msg.op === 'dismiss') {
      var old = toasts[msg.id];
      if (old && old.parentNode) old.parentNode.removeChild(old);
      delete toasts[msg.id];
      return;
    }
    var t = msg.toast;
    var el = document.createElement('div');
    el.textContent = t.message;
    el.style.cssText = 'padding:8px 12px;border-radius:6px;color:#fff;cursor:pointer;box-shadow:0 2px 8px rgba(0,0,0,0.2);background:' +
      (toastColors[t.kind] || toastColors.info);
    el.onclick = function() { send({ type: 'dismiss', id: t.id }); };
    ensureToastRoot().appendChild(el);
    toasts[t.id] = el;
  }

  function buildPanel() {
    if (panel) return;
    panel = document.createElement('div');
    panel.className = 'prompt-panel-floating';
    panel.style.cssText = 'position:fixed;top:16px;right:16px;width:300px;z-index:2147483647;background:#fff;color:#222;' +
      'border:1px solid #ddd;border-radius:8px;padding:10px;font:13px system-ui,sans-serif;box-shadow:0 4px 16px rgba(0,0,0,0.15)';
    panel.innerHTML =
      '<div style="display:flex;gap:6px;margin-bottom:8px">' +
        '<button data-act="toggle">Edit</button>' +
        '<button data-act="reset">Disable</button>' +
        '<button data-act="toasts">Toasts: On</button>' +
      '</div>' +
      '<div data-role="target" style="margin-bottom:6px;color:#555">No element selected</div>' +
      '<select data-role="type"><option value="">Auto</option><option>edit</option><option>fix</option>' +
        '<option>add</option><option>refactor</option><option>explain</option></select>' +
      '<textarea data-role="text" rows="3" style="width:100%;box-sizing:border-box;margin:6px 0"></textarea>' +
      '<div style="display:flex;gap:6px"><button data-act="generate">Generate</button><button data-act="copy">Copy</button></div>' +
      '<pre data-role="out" style="white-space:pre-wrap;max-height:160px;overflow:auto;margin:6px 0 0"></pre>';
    panel.addEventListener('click', function(e) {
      var act = e.target.getAttribute && e.target.getAttribute('data-act');
      if (!act) return;
      if (act === 'toasts') {
        send({ type: 'toasts', enabled: !config.toastsEnabled });
      } else if (act === 'generate') {
        send({ type: 'generate', text: q('text').value, category: q('type').value });
      } else {
        send({ type: act });
      }
    });
    document.body.appendChild(panel);
  }

  function q(role) {
    return panel.querySelector('[data-role="' + role + '"]');
  }

  function renderState(state) {
    if (!panel) return;
    config.toastsEnabled = state.toastsEnabled;
    panel.querySelector('[data-act="toasts"]').textContent = state.toastsEnabled ? 'Toasts: On' : 'Toasts: Off';
    setMode(state.active);
    renderTarget(state.target);
    if (state.generated) q('out').textContent = state.generated;
  }

  function renderTarget(t) {
    if (!panel) return;
    q('target').textContent = t ? t.componentName + ' - ' + t.filePath + ' lines ' + t.lineRange.start + '–' + t.lineRange.end : 'No element selected';
  }

  function setMode(active) {
    document.body.style.cursor = active ? 'crosshair' : '';
    if (panel) panel.querySelector('[data-act="toggle"]').textContent = active ? 'Selecting...' : 'Edit';
  }

  function handle(msg) {
    switch (msg.type) {
      case 'config':
        for (var k in msg.config) config[k] = msg.config[k];
        buildPanel();
        break;
      case 'listen': listen(msg); break;
      case 'unlisten': unlisten(msg); break;
      case 'overlay': overlayOp(msg); break;
      case 'mode': setMode(msg.active); break;
      case 'selected':
        renderTarget(msg.target);
        window.dispatchEvent(new CustomEvent('uisel:selected', { detail: msg.selection }));
        break;
      case 'prompt':
        lastPrompt = msg.prompt;
        if (panel) q('out').textContent = msg.prompt;
        window.dispatchEvent(new CustomEvent('uisel:prompt', { detail: msg.prompt }));
        break;
      case 'copied':
        if (navigator.clipboard) navigator.clipboard.writeText(msg.text).catch(function() {});
        break;
      case 'toast': toastOp(msg); break;
      case 'state': renderState(msg.state); break;
      case 'error': console.warn('[uisel]', msg.code, msg.message); break;
    }
  }

  var style = document.createElement('style');
  style.textContent = '@keyframes uiselPulse{0%{transform:scale(1)}50%{transform:scale(1.04);opacity:0.7}100%{transform:scale(1)}}';
  document.head.appendChild(style);

  window.__uisel = {
    toggle: function() { send({ type: 'toggle' }); },
    enable: function() { send({ type: 'enable' }); },
    disable: function() { send({ type: 'disable' }); },
    generate: function(text, category) { send({ type: 'generate', text: text, category: category || '' }); },
    lastPrompt: function() { return lastPrompt; }
  };

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', connect);
  } else {
    connect();
  }
})();
</script>
`

// PickerScript returns the script tag injected into proxied pages.
func PickerScript() string {
	return pickerScript
}

// InjectScript inserts the picker script into an HTML document. It prefers
// the end of <head>, then the start of <head>, <body> and <html>, and
// prepends the script as a last resort.
func InjectScript(body []byte) []byte {
	script := []byte(pickerScript)

	if bytes.Contains(body, []byte("<script data-uisel>")) {
		return body
	}

	// Try to inject before </head>
	if idx := bytes.Index(body, []byte("</head>")); idx != -1 {
		return insertAt(body, script, idx)
	}

	// Try to inject after <head>
	if idx := bytes.Index(body, []byte("<head>")); idx != -1 {
		return insertAt(body, script, idx+len("<head>"))
	}

	// Try to inject after <body> and then <html>, allowing attributes
	for _, tag := range []string{"<body", "<html"} {
		if idx := bytes.Index(body, []byte(tag)); idx != -1 {
			if endIdx := bytes.IndexByte(body[idx:], '>'); endIdx != -1 {
				return insertAt(body, script, idx+endIdx+1)
			}
		}
	}

	// Last resort: prepend to body
	return insertAt(body, script, 0)
}

func insertAt(body, script []byte, at int) []byte {
	result := make([]byte, 0, len(body)+len(script))
	result = append(result, body[:at]...)
	result = append(result, script...)
	result = append(result, body[at:]...)
	return result
}

// ShouldInject determines if the script should be injected based on content type.
func ShouldInject(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html")
}
