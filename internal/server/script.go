package server

// Internal endpoint paths. Everything under /_live/ belongs to the
// server itself, never to the served directory.
const (
	healthPath = "/_live/health"
	scriptPath = "/_live/script.js"
	wsPath     = "/_live/ws"
)

// liveClientScript is the browser side of the push channel. It reads
// the injected config, keeps a websocket open with reconnect backoff,
// and applies reload and diff messages.
const liveClientScript = `(() => {
  "use strict";

  const config = window.__LIVESERVE_CONFIG__ || { wsPath: "/_live/ws", diffMode: false };
  let retryDelay = 500;

  function connect() {
    const proto = location.protocol === "https:" ? "wss:" : "ws:";
    const socket = new WebSocket(proto + "//" + location.host + config.wsPath);

    socket.onopen = () => {
      retryDelay = 500;
    };

    socket.onmessage = (frame) => {
      let msg;
      try {
        msg = JSON.parse(frame.data);
      } catch {
        return;
      }
      handle(msg);
    };

    socket.onclose = () => {
      setTimeout(connect, retryDelay);
      retryDelay = Math.min(retryDelay * 2, 10000);
    };
  }

  function handle(msg) {
    if (msg.type === "reload") {
      location.reload();
      return;
    }
    if (msg.type !== "diff") {
      return;
    }
    if (msg.resource === "css") {
      refreshStylesheets(msg.path);
      return;
    }
    if (msg.resource === "html" && samePage(msg.path)) {
      refreshDocument(msg.path);
    }
  }

  function refreshStylesheets(path) {
    const links = document.querySelectorAll('link[rel="stylesheet"]');
    let touched = false;
    for (const link of links) {
      const href = link.getAttribute("href");
      if (!href) continue;
      const url = new URL(href, location.href);
      if (url.origin !== location.origin) continue;
      if (url.pathname !== path) continue;
      url.searchParams.set("_liveserve", Date.now().toString());
      link.setAttribute("href", url.pathname + url.search);
      touched = true;
    }
    if (!touched) {
      location.reload();
    }
  }

  function samePage(path) {
    let current = location.pathname;
    if (current.endsWith("/index.html")) {
      current = current.slice(0, -"index.html".length);
    } else if (current.endsWith("/index.htm")) {
      current = current.slice(0, -"index.htm".length);
    }
    return current === path;
  }

  function refreshDocument(path) {
    fetch(path, { cache: "no-store" })
      .then((res) => (res.ok ? res.text() : Promise.reject()))
      .then((html) => {
        const next = new DOMParser().parseFromString(html, "text/html");
        document.body.replaceWith(next.body);
        document.title = next.title;
      })
      .catch(() => location.reload());
  }

  connect();
})();
`
