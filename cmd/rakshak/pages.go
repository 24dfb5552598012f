package main

// Thin HTML surfaces. The gateway is an API first; these pages exist so a
// browser hitting the honeypot sees something plausible.

const landingPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Rakshak</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 640px; margin: 4rem auto; color: #222; }
code { background: #f4f4f4; padding: 2px 6px; border-radius: 4px; }
</style>
</head>
<body>
<h1>Rakshak</h1>
<p>Agentic scam honeypot gateway. Suspicious conversations go in, harvested
scammer infrastructure comes out.</p>
<ul>
<li><a href="/user">Check a message</a></li>
<li><a href="/admin">Gateway stats</a></li>
<li><code>POST /honeypot</code> with <code>x-api-key</code> to talk to the decoy</li>
</ul>
</body>
</html>`

const userPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Rakshak - Message Checker</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 640px; margin: 4rem auto; color: #222; }
textarea, input { width: 100%; box-sizing: border-box; margin-bottom: 1rem; padding: 8px; }
button { padding: 8px 24px; }
pre { background: #f4f4f4; padding: 1rem; border-radius: 4px; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Message Checker</h1>
<p>Paste a suspicious SMS or chat message to see what the honeypot makes of it.</p>
<input id="key" type="password" placeholder="API key">
<textarea id="msg" rows="4" placeholder="your account is blocked, verify at..."></textarea>
<button onclick="check()">Check</button>
<pre id="out"></pre>
<script>
async function check() {
  const out = document.getElementById('out');
  out.textContent = '...';
  try {
    const resp = await fetch('/honeypot', {
      method: 'POST',
      headers: {
        'Content-Type': 'application/json',
        'x-api-key': document.getElementById('key').value
      },
      body: JSON.stringify({ message: document.getElementById('msg').value })
    });
    out.textContent = JSON.stringify(await resp.json(), null, 2);
  } catch (err) {
    out.textContent = String(err);
  }
}
</script>
</body>
</html>`

// adminPage takes the stats JSON via fmt.Sprintf.
const adminPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Rakshak - Stats</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 640px; margin: 4rem auto; color: #222; }
pre { background: #f4f4f4; padding: 1rem; border-radius: 4px; }
</style>
</head>
<body>
<h1>Gateway Stats</h1>
<pre>%s</pre>
<p><a href="/admin/stats">Raw JSON</a></p>
</body>
</html>`
